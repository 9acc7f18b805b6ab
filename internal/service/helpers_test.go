package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

var serviceBaseTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (f *fakeActivityRecorder) Record(_ context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	f.entries = append(f.entries, entry)
	return dto.ActivityResponse{}, nil
}

type fakeEventPublisher struct {
	events []DomainEvent
}

func (f *fakeEventPublisher) Publish(_ context.Context, event DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeAssignmentRepo struct {
	assignments     map[uint]models.Assignment
	otherWeights    []float64
	submissionCount int64
	dueSoon         []models.Assignment

	createCalls         int
	updateCalls         int
	deleteCalls         int
	dueSoonCalls        int
	lastExpectedVersion int
	updateErr           error
}

func newFakeAssignmentRepo(assignments ...models.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment)}
	for _, assignment := range assignments {
		repo.assignments[assignment.ID] = assignment
	}
	return repo
}

func (f *fakeAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	result := make([]models.Assignment, 0, len(f.assignments))
	for _, assignment := range f.assignments {
		if filter.CourseID != nil && assignment.CourseID != *filter.CourseID {
			continue
		}
		if filter.Status != nil && assignment.Status != *filter.Status {
			continue
		}
		result = append(result, assignment)
	}
	return result, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	f.createCalls++
	if assignment.ID == 0 {
		assignment.ID = uint(len(f.assignments) + 1)
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment, expectedVersion int) error {
	f.updateCalls++
	f.lastExpectedVersion = expectedVersion
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.assignments[assignment.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	assignment.Version = expectedVersion + 1
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id uint) error {
	f.deleteCalls++
	if _, ok := f.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) ListOtherWeights(_ context.Context, _, _ uint) ([]float64, error) {
	return f.otherWeights, nil
}

func (f *fakeAssignmentRepo) ListPublishedDueBetween(_ context.Context, _, _ time.Time) ([]models.Assignment, error) {
	f.dueSoonCalls++
	return f.dueSoon, nil
}

func (f *fakeAssignmentRepo) CountSubmissions(_ context.Context, _ uint) (int64, error) {
	return f.submissionCount, nil
}

type fakeCourseRepo struct {
	courses     map[uint]models.Course
	createCalls int
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[uint]models.Course)}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (f *fakeCourseRepo) List(_ context.Context) ([]models.Course, error) {
	result := make([]models.Course, 0, len(f.courses))
	for _, course := range f.courses {
		result = append(result, course)
	}
	return result, nil
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	f.createCalls++
	if course.ID == 0 {
		course.ID = uint(len(f.courses) + 1)
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission

	createCalls         int
	updateCalls         int
	lastExpectedVersion int
	lastExpectedStatus  models.SubmissionStatus
	updateErr           error
}

func newFakeSubmissionRepo(submissions ...models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{submissions: make(map[uint]models.Submission)}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
	}
	return repo
}

func (f *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	result := make([]models.Submission, 0, len(f.submissions))
	for _, submission := range f.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.LearnerID != nil && submission.LearnerID != *filter.LearnerID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		result = append(result, submission)
	}
	return result, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByAssignmentAndLearner(_ context.Context, assignmentID, learnerID uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID && submission.LearnerID == learnerID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	f.createCalls++
	if submission.ID == 0 {
		submission.ID = uint(len(f.submissions) + 1)
	}
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) UpdateGuarded(_ context.Context, submission *models.Submission, expectedVersion int, expectedStatus models.SubmissionStatus) error {
	f.updateCalls++
	f.lastExpectedVersion = expectedVersion
	f.lastExpectedStatus = expectedStatus
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.submissions[submission.ID]
	if !ok || stored.Version != expectedVersion || stored.Status != expectedStatus {
		return repository.ErrVersionConflict
	}
	submission.Version = expectedVersion + 1
	f.submissions[submission.ID] = *submission
	return nil
}

type fakeReportRepo struct {
	reports map[uint]models.Report

	createCalls         int
	updateCalls         int
	lastExpectedVersion int
}

func newFakeReportRepo(reports ...models.Report) *fakeReportRepo {
	repo := &fakeReportRepo{reports: make(map[uint]models.Report)}
	for _, report := range reports {
		repo.reports[report.ID] = report
	}
	return repo
}

func (f *fakeReportRepo) List(_ context.Context, filter repository.ReportFilter) ([]models.Report, error) {
	result := make([]models.Report, 0, len(f.reports))
	for _, report := range f.reports {
		if filter.Status != nil && report.Status != *filter.Status {
			continue
		}
		if filter.ReportedType != nil && report.ReportedType != *filter.ReportedType {
			continue
		}
		result = append(result, report)
	}
	return result, nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id uint) (models.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return models.Report{}, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (f *fakeReportRepo) Create(_ context.Context, report *models.Report) error {
	f.createCalls++
	if report.ID == 0 {
		report.ID = uint(len(f.reports) + 1)
	}
	f.reports[report.ID] = *report
	return nil
}

func (f *fakeReportRepo) Update(_ context.Context, report *models.Report, expectedVersion int) error {
	f.updateCalls++
	f.lastExpectedVersion = expectedVersion
	stored, ok := f.reports[report.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	report.Version = expectedVersion + 1
	f.reports[report.ID] = *report
	return nil
}

type fakeActionLogRepo struct {
	actions     []models.ModerationAction
	appendCalls int
}

func (f *fakeActionLogRepo) Append(_ context.Context, action *models.ModerationAction) error {
	f.appendCalls++
	action.ID = uint(len(f.actions) + 1)
	f.actions = append(f.actions, *action)
	return nil
}

func (f *fakeActionLogRepo) ListByReport(_ context.Context, reportID uint) ([]models.ModerationAction, error) {
	result := make([]models.ModerationAction, 0, len(f.actions))
	for _, action := range f.actions {
		if action.ReportID == reportID {
			result = append(result, action)
		}
	}
	return result, nil
}
