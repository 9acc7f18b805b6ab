package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// ActionLogRepository persists the append-only moderation action log.
// There is deliberately no update or delete.
type ActionLogRepository interface {
	Append(ctx context.Context, action *models.ModerationAction) error
	ListByReport(ctx context.Context, reportID uint) ([]models.ModerationAction, error)
}

type actionLogRepository struct {
	db *gorm.DB
}

// NewActionLogRepository constructs the moderation action log repository.
func NewActionLogRepository(db *gorm.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Append(ctx context.Context, action *models.ModerationAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *actionLogRepository) ListByReport(ctx context.Context, reportID uint) ([]models.ModerationAction, error) {
	var actions []models.ModerationAction
	if err := r.db.WithContext(ctx).
		Model(&models.ModerationAction{}).
		Where("report_id = ?", reportID).
		Order("performed_at ASC").
		Find(&actions).Error; err != nil {
		return nil, err
	}

	return actions, nil
}
