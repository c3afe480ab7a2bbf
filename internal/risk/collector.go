package risk

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// ErrNoData means the student has no active enrollment in the tenant, so no
// feature vector can be produced. It is an expected outcome, not a failure:
// orchestration logs and skips.
var ErrNoData = errors.New("no academic data available for student")

// The collector reads through these narrow views of the record store; the
// repos package satisfies them.
type enrollmentSource interface {
	ListActiveByStudent(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Enrollment, error)
}

type assignmentSource interface {
	ListForStudentSections(ctx context.Context, tx *gorm.DB, schoolID, studentID uuid.UUID) ([]*types.Assignment, error)
}

type submissionSource interface {
	ListByStudentAndAssignments(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, assignmentIDs []uuid.UUID) ([]*types.Submission, error)
}

type userSource interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
}

// Collector assembles a complete feature vector for one student, or reports
// ErrNoData. It never produces a partial vector and never writes.
type Collector struct {
	log         *logger.Logger
	enrollments enrollmentSource
	assignments assignmentSource
	submissions submissionSource
	users       userSource
	telemetry   TelemetrySource
}

func NewCollector(
	baseLog *logger.Logger,
	enrollments enrollmentSource,
	assignments assignmentSource,
	submissions submissionSource,
	users userSource,
	telemetry TelemetrySource,
) *Collector {
	return &Collector{
		log:         baseLog.With("component", "Collector"),
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		users:       users,
		telemetry:   telemetry,
	}
}

// failingGradeShare marks a submission failed when it earned less than this
// share of the assignment's total points.
const failingGradeShare = 0.6

func (c *Collector) Collect(ctx context.Context, schoolID, studentID uuid.UUID) (FeatureVector, error) {
	var fv FeatureVector

	enrollments, err := c.enrollments.ListActiveByStudent(ctx, nil, schoolID, studentID)
	if err != nil {
		return fv, err
	}
	if len(enrollments) == 0 {
		return fv, ErrNoData
	}

	assignments, err := c.assignments.ListForStudentSections(ctx, nil, schoolID, studentID)
	if err != nil {
		return fv, err
	}
	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	totalPoints := make(map[uuid.UUID]float64, len(assignments))
	dueDates := make(map[uuid.UUID]time.Time, len(assignments))
	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
		totalPoints[a.ID] = a.TotalPoints
		dueDates[a.ID] = a.DueDate
	}

	submissions, err := c.submissions.ListByStudentAndAssignments(ctx, nil, studentID, assignmentIDs)
	if err != nil {
		return fv, err
	}

	totalAssignments := len(assignments)
	completed := 0
	late := 0
	failed := 0
	gradeSum := 0.0
	graded := 0
	for _, s := range submissions {
		if s.Status == types.SubmissionSubmitted || s.Status == types.SubmissionGraded {
			completed++
		}
		if s.SubmittedAt != nil {
			if due, ok := dueDates[s.AssignmentID]; ok && s.SubmittedAt.After(due) {
				late++
			}
		}
		if s.PointsEarned != nil {
			gradeSum += *s.PointsEarned
			graded++
			if tp := totalPoints[s.AssignmentID]; tp > 0 && *s.PointsEarned < tp*failingGradeShare {
				failed++
			}
		}
	}

	fv.AssignmentCompletionRate = safeRate(completed, totalAssignments)
	fv.LateSubmissionsRate = safeRate(late, totalAssignments)
	fv.FailedAssignmentsRate = safeRate(failed, totalAssignments)
	if graded > 0 {
		fv.AverageGrade = gradeSum / float64(graded)
	}

	student, err := c.users.GetByID(ctx, nil, studentID)
	if err != nil {
		return fv, err
	}
	if student == nil || student.LastLogin == nil {
		fv.DaysSinceLastLogin = neverLoggedInSentinel
	} else {
		fv.DaysSinceLastLogin = float64(int(time.Since(*student.LastLogin).Hours() / 24))
	}

	tel, err := c.telemetry.Collect(ctx, schoolID, studentID)
	if err != nil {
		return fv, err
	}
	fv.AttendanceRate = tel.AttendanceRate
	fv.ParticipationScore = tel.ParticipationScore
	fv.StudyTimeHours = tel.StudyTimeHours
	fv.PreviousSemesterGPA = tel.PreviousSemesterGPA
	fv.CurrentSemesterGPA = tel.CurrentSemesterGPA
	fv.LoginFrequency = tel.LoginFrequency
	fv.SubmissionDelayHours = tel.SubmissionDelayHours

	return fv, nil
}

func safeRate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
