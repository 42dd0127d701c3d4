package api

import (
	"encoding/json"
	"errors"
	"strings"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/workmate-ai/workmate/core/manager"
	"github.com/workmate-ai/workmate/core/types"
)

type executeRequest struct {
	AgentType  string                 `json:"agent_type"`
	Action     string                 `json:"action"`
	Parameters *types.OrderedParams   `json:"parameters"`
	Context    map[string]interface{} `json:"context"`
}

type overrideRequest struct {
	Reason           string                 `json:"reason"`
	CorrectiveAction map[string]interface{} `json:"corrective_action"`
}

// ExecuteAgent dispatches one request through the agent manager. The caller's
// identity is stamped into the context so tools and the audit row can see who
// asked, regardless of what the client sent.
func (a *App) ExecuteAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := executeRequest{}
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if payload.AgentType == "" || payload.Action == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "agent_type and action are required"})
		}

		user := currentUser(c)
		contextData := map[string]interface{}{}
		for k, v := range payload.Context {
			contextData[k] = v
		}
		contextData["user_id"] = user.ID
		contextData["user_name"] = user.FullName
		contextData["user_role"] = user.Role
		contextData["user_department"] = user.Department

		result := a.config.Manager.ExecuteAction(c.Context(), payload.AgentType, payload.Action, payload.Parameters, contextData, &user.ID)
		return c.JSON(result)
	}
}

func (a *App) AgentInfo() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(a.config.Manager.AgentInfo())
	}
}

func (a *App) ActionHistory() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)

		filter := manager.HistoryFilter{
			AgentType:   c.Query("agent_type"),
			SuccessOnly: c.QueryBool("success_only", false),
			Limit:       c.QueryInt("limit", 50),
			Offset:      c.QueryInt("offset", 0),
		}
		if !user.IsManager() {
			filter.UserID = &user.ID
		}

		actions, total, err := a.config.Manager.History(c.Context(), filter)
		if err != nil {
			return errorJSONMessage(c, "Could not load action history")
		}

		rows := make([]fiber.Map, 0, len(actions))
		for _, action := range actions {
			rows = append(rows, fiber.Map{
				"id":                action.ID,
				"agent_name":        action.AgentName,
				"action_type":       action.ActionType,
				"success":           action.Success,
				"error_message":     nullableString(action.ErrorMessage),
				"execution_time_ms": action.ExecutionTimeMS,
				"timestamp":         action.Timestamp,
				"user_id":           action.UserID,
				"overridden":        action.Overridden,
			})
		}

		return c.JSON(fiber.Map{
			"total":   total,
			"limit":   filter.Limit,
			"offset":  filter.Offset,
			"actions": rows,
		})
	}
}

func (a *App) ActionDetail() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action not found"})
		}

		action, err := a.config.Manager.GetAction(c.Context(), uint(id))
		if err != nil {
			if errors.Is(err, manager.ErrActionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action not found"})
			}
			return errorJSONMessage(c, "Could not load action")
		}

		user := currentUser(c)
		if !user.IsManager() && (action.UserID == nil || *action.UserID != user.ID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this action"})
		}

		detail := fiber.Map{
			"id":                action.ID,
			"agent_name":        action.AgentName,
			"action_type":       action.ActionType,
			"input_data":        action.InputData,
			"output_data":       action.OutputData,
			"success":           action.Success,
			"error_message":     nullableString(action.ErrorMessage),
			"execution_time_ms": action.ExecutionTimeMS,
			"timestamp":         action.Timestamp,
			"overridden":        action.Overridden,
			"override_reason":   nullableString(action.OverrideReason),
			"corrective_action": action.CorrectiveAction,
			"user":              nil,
			"overridden_by":     nil,
		}
		if action.User != nil {
			detail["user"] = fiber.Map{"id": action.User.ID, "name": action.User.FullName, "email": action.User.Email}
		}
		if action.OverriddenBy != nil {
			detail["overridden_by"] = fiber.Map{"id": action.OverriddenBy.ID, "name": action.OverriddenBy.FullName}
		}

		return c.JSON(detail)
	}
}

func (a *App) OverrideAgentAction() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action not found"})
		}

		payload := overrideRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if strings.TrimSpace(payload.Reason) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Override reason is required"})
		}

		user := currentUser(c)
		err = a.config.Manager.OverrideAction(c.Context(), uint(id), user.ID, payload.Reason, payload.CorrectiveAction)
		switch {
		case errors.Is(err, manager.ErrActionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action not found"})
		case errors.Is(err, manager.ErrActionAlreadyOverridden):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Action already overridden"})
		case err != nil:
			return errorJSONMessage(c, "Could not override action")
		}

		return c.JSON(fiber.Map{"message": "Action overridden successfully", "action_id": uint(id)})
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
