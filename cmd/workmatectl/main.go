package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/workmate-ai/workmate/core/types"
	workmate "github.com/workmate-ai/workmate/pkg/client"
)

const usage = `Usage: workmatectl [flags] <command> [args]

Commands:
  login <email> <password>                 obtain a bearer token
  info                                     list the available agents
  execute <agent> <action> [key=value...]  run an agent action
  ask <agent> <text...>                    send a natural-language request
  history                                  list audit rows
  action <id>                              show one audit row
  override <id> <reason...>                override an action (manager only)
  reports                                  list persisted reports

Flags:
`

func main() {
	url := flag.String("url", envOr("WORKMATE_API_URL", "http://localhost:8000"), "API base URL")
	token := flag.String("token", os.Getenv("WORKMATE_API_TOKEN"), "bearer token")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	agentType := flag.String("agent", "", "agent type filter for history")
	limit := flag.Int("limit", 20, "page size for listings")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	client := workmate.NewClient(*url, *token, *timeout)
	ctx := context.Background()

	switch command, rest := args[0], args[1:]; command {
	case "login":
		if len(rest) != 2 {
			log.Fatal("login needs <email> <password>")
		}
		response, err := client.Login(ctx, rest[0], rest[1])
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		fmt.Println(response.AccessToken)

	case "info":
		info, err := client.AgentInfo(ctx)
		if err != nil {
			log.Fatalf("Failed to list agents: %v", err)
		}
		printJSON(info)

	case "execute":
		if len(rest) < 2 {
			log.Fatal("execute needs <agent> <action> [key=value...]")
		}
		params, err := parseParams(rest[2:])
		if err != nil {
			log.Fatal(err)
		}
		result, err := client.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  rest[0],
			Action:     rest[1],
			Parameters: params,
		})
		if err != nil {
			log.Fatalf("Execute failed: %v", err)
		}
		printJSON(result)

	case "ask":
		if len(rest) < 2 {
			log.Fatal("ask needs <agent> <text...>")
		}
		params := types.NewOrderedParams().Set("query", strings.Join(rest[1:], " "))
		result, err := client.Execute(ctx, workmate.ExecuteRequest{
			AgentType:  rest[0],
			Action:     "process_natural_language",
			Parameters: params,
		})
		if err != nil {
			log.Fatalf("Execute failed: %v", err)
		}
		if !result.Success {
			log.Fatalf("Agent failed: %s", result.Error)
		}
		fmt.Println(result.Output)

	case "history":
		history, err := client.History(ctx, workmate.HistoryOptions{
			AgentType: *agentType,
			Limit:     *limit,
		})
		if err != nil {
			log.Fatalf("Failed to load history: %v", err)
		}
		fmt.Printf("%d actions (showing %d)\n", history.Total, len(history.Actions))
		for _, action := range history.Actions {
			status := "ok"
			if !action.Success {
				status = "failed"
			}
			if action.Overridden {
				status += ", overridden"
			}
			fmt.Printf("#%d  %s  %s  (%s, %dms)\n",
				action.ID, action.Timestamp.Format(time.RFC3339), action.AgentName, status, action.ExecutionTimeMS)
		}

	case "action":
		id, err := parseID(rest, "action")
		if err != nil {
			log.Fatal(err)
		}
		detail, err := client.Action(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load action: %v", err)
		}
		printJSON(detail)

	case "override":
		id, err := parseID(rest, "override")
		if err != nil {
			log.Fatal(err)
		}
		if len(rest) < 2 {
			log.Fatal("override needs <id> <reason...>")
		}
		reason := strings.Join(rest[1:], " ")
		if err := client.OverrideAction(ctx, id, reason, nil); err != nil {
			log.Fatalf("Override failed: %v", err)
		}
		fmt.Printf("Action %d overridden\n", id)

	case "reports":
		reports, err := client.ListReports(ctx, "", *limit, 0)
		if err != nil {
			log.Fatalf("Failed to load reports: %v", err)
		}
		for _, report := range reports {
			fmt.Printf("#%d  [%s]  %s  (%s to %s)\n",
				report.ID, report.Type, report.Title,
				report.DateFrom.Format("2006-01-02"), report.DateTo.Format("2006-01-02"))
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseID(args []string, command string) (uint, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s needs an action id", command)
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid action id %q", args[0])
	}
	return uint(id), nil
}

// parseParams turns key=value arguments into an ordered parameter bag,
// keeping command-line order.
func parseParams(args []string) (*types.OrderedParams, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := types.NewOrderedParams()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", arg)
		}
		params.Set(key, coerce(value))
	}
	return params, nil
}

// coerce guesses the JSON type of a command-line value.
func coerce(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render response: %v", err)
	}
	fmt.Println(string(data))
}
