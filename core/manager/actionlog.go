package manager

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

var (
	ErrActionNotFound          = errors.New("action not found")
	ErrActionAlreadyOverridden = errors.New("action already overridden")
)

// HistoryFilter selects audit rows. AgentType matches the stored agent name
// exactly. UserID restricts rows to one requester, which the HTTP layer sets
// for non-managers.
type HistoryFilter struct {
	AgentType   string
	SuccessOnly bool
	UserID      *uint
	Limit       int
	Offset      int
}

// History returns a page of audit rows, newest first, plus the total count
// before pagination.
func (m *Manager) History(ctx context.Context, filter HistoryFilter) ([]models.AgentAction, int64, error) {
	query := m.db.WithContext(ctx).Model(&models.AgentAction{})
	if filter.AgentType != "" {
		query = query.Where("agent_name = ?", filter.AgentType)
	}
	if filter.SuccessOnly {
		query = query.Where("success = ?", true)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var actions []models.AgentAction
	if err := query.Order("timestamp DESC").Offset(filter.Offset).Limit(limit).Find(&actions).Error; err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

// GetAction loads one audit row with its requester and overrider.
func (m *Manager) GetAction(ctx context.Context, id uint) (*models.AgentAction, error) {
	var action models.AgentAction
	err := m.db.WithContext(ctx).Preload("User").Preload("OverriddenBy").First(&action, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, err
	}
	return &action, nil
}

// OverrideAction flags a past action. The transition is one way: a guarded
// update makes concurrent overrides race safely, with exactly one winner and
// the loser seeing ErrActionAlreadyOverridden. The original action is never
// re-executed.
func (m *Manager) OverrideAction(ctx context.Context, actionID, managerID uint, reason string, corrective map[string]interface{}) error {
	updates := map[string]interface{}{
		"overridden":       true,
		"overridden_by_id": managerID,
		"override_reason":  reason,
	}
	if corrective != nil {
		data, err := json.Marshal(corrective)
		if err != nil {
			return err
		}
		updates["corrective_action"] = datatypes.JSON(data)
	}

	res := m.db.WithContext(ctx).Model(&models.AgentAction{}).
		Where("id = ? AND overridden = ?", actionID, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := m.db.WithContext(ctx).Model(&models.AgentAction{}).Where("id = ?", actionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrActionNotFound
		}
		return ErrActionAlreadyOverridden
	}

	xlog.Info("Agent action overridden", "action_id", actionID, "manager_id", managerID)
	return nil
}
