package workmate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/workmate-ai/workmate/core/types"
)

// ExecuteRequest is one agent invocation. Parameters keep their insertion
// order on the wire, which matters for how the agent reads the request.
type ExecuteRequest struct {
	AgentType  string                 `json:"agent_type"`
	Action     string                 `json:"action"`
	Parameters *types.OrderedParams   `json:"parameters,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// AgentDescription is one entry of the agent catalog.
type AgentDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// ActionSummary is one row of the action history listing.
type ActionSummary struct {
	ID              uint      `json:"id"`
	AgentName       string    `json:"agent_name"`
	ActionType      string    `json:"action_type"`
	Success         bool      `json:"success"`
	ErrorMessage    *string   `json:"error_message"`
	ExecutionTimeMS int64     `json:"execution_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
	UserID          *uint     `json:"user_id"`
	Overridden      bool      `json:"overridden"`
}

// ActionHistory is a page of audit rows, newest first.
type ActionHistory struct {
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Actions []ActionSummary `json:"actions"`
}

// ActionActor identifies the user attached to an audit row.
type ActionActor struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ActionDetail is the full audit record of one agent invocation.
type ActionDetail struct {
	ID               uint            `json:"id"`
	AgentName        string          `json:"agent_name"`
	ActionType       string          `json:"action_type"`
	InputData        json.RawMessage `json:"input_data"`
	OutputData       json.RawMessage `json:"output_data"`
	Success          bool            `json:"success"`
	ErrorMessage     *string         `json:"error_message"`
	ExecutionTimeMS  int64           `json:"execution_time_ms"`
	Timestamp        time.Time       `json:"timestamp"`
	Overridden       bool            `json:"overridden"`
	OverrideReason   *string         `json:"override_reason"`
	CorrectiveAction json.RawMessage `json:"corrective_action"`
	User             *ActionActor    `json:"user"`
	OverriddenBy     *ActionActor    `json:"overridden_by"`
}

// HistoryOptions filters and pages the action history listing. Zero values
// mean server defaults.
type HistoryOptions struct {
	AgentType   string
	SuccessOnly bool
	Limit       int
	Offset      int
}

// Execute dispatches one request through the agent manager and returns the
// execution envelope. Agent-level failures come back inside the envelope,
// not as an error.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*types.ExecutionResult, error) {
	var result types.ExecutionResult
	if err := c.call(ctx, http.MethodPost, "/api/agents/execute", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AgentInfo returns the agent catalog keyed by agent type.
func (c *Client) AgentInfo(ctx context.Context) (map[string]AgentDescription, error) {
	var info map[string]AgentDescription
	if err := c.call(ctx, http.MethodGet, "/api/agents/info", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// History lists audit rows visible to the authenticated user.
func (c *Client) History(ctx context.Context, opts HistoryOptions) (*ActionHistory, error) {
	query := url.Values{}
	if opts.AgentType != "" {
		query.Set("agent_type", opts.AgentType)
	}
	if opts.SuccessOnly {
		query.Set("success_only", "true")
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/agents/actions/history"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var history ActionHistory
	if err := c.call(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// Action returns the full audit record for one action.
func (c *Client) Action(ctx context.Context, id uint) (*ActionDetail, error) {
	var detail ActionDetail
	path := fmt.Sprintf("/api/agents/actions/%d", id)
	if err := c.call(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// OverrideAction marks an action as overridden with a reason. Requires a
// manager token; overriding twice fails.
func (c *Client) OverrideAction(ctx context.Context, id uint, reason string, corrective map[string]interface{}) error {
	body := map[string]interface{}{"reason": reason}
	if corrective != nil {
		body["corrective_action"] = corrective
	}
	path := fmt.Sprintf("/api/agents/actions/%d/override", id)
	return c.call(ctx, http.MethodPost, path, body, nil)
}
