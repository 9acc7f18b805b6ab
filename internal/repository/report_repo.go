package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// ReportFilter narrows report queries.
type ReportFilter struct {
	Status       *models.ReportStatus
	ReportedType *models.ReportTargetType
}

// ReportRepository defines data operations for abuse reports.
type ReportRepository interface {
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	GetByID(ctx context.Context, id uint) (models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	// Update writes the report guarded by its expected version. Returns
	// ErrVersionConflict when the stored version no longer matches, which
	// is how two racing operators resolve deterministically.
	Update(ctx context.Context, report *models.Report, expectedVersion int) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository instantiates the repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.ReportedType != nil {
		query = query.Where("reported_type = ?", *filter.ReportedType)
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return models.Report{}, err
	}

	return report, nil
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) Update(ctx context.Context, report *models.Report, expectedVersion int) error {
	report.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND version = ?", report.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(report)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}
