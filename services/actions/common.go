package actions

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/workmate-ai/workmate/core/types"
)

// Layouts for the timestamps that appear inside tool messages.
const (
	clockLayout     = "03:04 PM"
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
	lastSeenLayout  = "03:04 PM on 01/02/2006"
)

// errorResult is a domain refusal. The message is meant to be read and
// relayed by the model, not raised.
func errorResult(format string, args ...interface{}) types.ActionResult {
	return types.ActionResult{Result: fmt.Sprintf(format, args...), Failed: true}
}

// round2 rounds to the two decimals hours are stored and reported with.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// round1 rounds to one decimal, used for percentages.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// weekStart returns UTC midnight of the Monday of t's week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	monday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -monday)
}
