package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campuskit/campuskit-backend/internal/cache"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// One connection serializes writers; sqlite returns busy errors
		// under concurrent writes otherwise.
		sqlDB.SetMaxOpenConns(1)
	}
	err = db.AutoMigrate(
		&types.School{},
		&types.User{},
		&types.Enrollment{},
		&types.Assignment{},
		&types.Submission{},
		&types.RiskPrediction{},
		&types.TrainingSession{},
		&types.PredictiveAlert{},
		&types.LearningRecommendation{},
		&types.ModelSnapshot{},
		&types.JobRun{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv wires the full service stack over one in-memory database, with
// the cache disabled and the rule-based fallback scorer.
type testEnv struct {
	db              *gorm.DB
	users           repos.UserRepo
	enrollments     repos.EnrollmentRepo
	assignments     repos.AssignmentRepo
	submissions     repos.SubmissionRepo
	predictions     repos.RiskPredictionRepo
	alertRepo       repos.PredictiveAlertRepo
	recRepo         repos.LearningRecommendationRepo
	sessions        repos.TrainingSessionRepo
	snapshots       repos.ModelSnapshotRepo
	jobRepo         repos.JobRunRepo
	collector       *risk.Collector
	scorers         *ScorerSource
	alerts          AlertService
	recommendations RecommendationService
	jobs            JobService
	riskSvc         RiskService
	training        TrainingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()

	env := &testEnv{db: db}
	env.users = repos.NewUserRepo(db, log)
	env.enrollments = repos.NewEnrollmentRepo(db, log)
	env.assignments = repos.NewAssignmentRepo(db, log)
	env.submissions = repos.NewSubmissionRepo(db, log)
	env.predictions = repos.NewRiskPredictionRepo(db, log)
	env.alertRepo = repos.NewPredictiveAlertRepo(db, log)
	env.recRepo = repos.NewLearningRecommendationRepo(db, log)
	env.sessions = repos.NewTrainingSessionRepo(db, log)
	env.snapshots = repos.NewModelSnapshotRepo(db, log)
	env.jobRepo = repos.NewJobRunRepo(db, log)

	env.collector = risk.NewCollector(log, env.enrollments, env.assignments, env.submissions, env.users, risk.StaticTelemetry{})
	env.scorers = NewScorerSource(log, env.snapshots)
	env.alerts = NewAlertService(log, env.alertRepo)
	env.recommendations = NewRecommendationService(log, env.recRepo)
	env.jobs = NewJobService(log, env.jobRepo)
	env.riskSvc = NewRiskService(
		log,
		env.collector,
		env.scorers,
		env.predictions,
		env.enrollments,
		env.alerts,
		env.recommendations,
		env.jobs,
		cache.NewPredictionCache(nil, 0, log),
	)
	env.training = NewTrainingService(log, env.collector, env.enrollments, env.snapshots, env.sessions, env.scorers)
	return env
}

// seedStrugglingStudent creates a student whose record produces a HIGH
// rule-based assessment: 1 of 4 assignments completed, failing grades.
func (env *testEnv) seedStrugglingStudent(t *testing.T, schoolID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	lastLogin := time.Now().Add(-24 * time.Hour)
	student := &types.User{
		ID:        uuid.New(),
		SchoolID:  schoolID,
		Email:     fmt.Sprintf("student-%s@test.edu", uuid.New()),
		Password:  "x",
		Role:      types.RoleStudent,
		LastLogin: &lastLogin,
	}
	if _, err := env.users.Create(ctx, nil, []*types.User{student}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sectionID := uuid.New()
	if _, err := env.enrollments.Create(ctx, nil, []*types.Enrollment{{
		ID:        uuid.New(),
		SchoolID:  schoolID,
		StudentID: student.ID,
		SectionID: sectionID,
		Status:    types.EnrollmentEnrolled,
	}}); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}

	due := time.Now().Add(-7 * 24 * time.Hour)
	assignments := make([]*types.Assignment, 4)
	for i := range assignments {
		assignments[i] = &types.Assignment{
			ID:          uuid.New(),
			SchoolID:    schoolID,
			SectionID:   sectionID,
			Title:       fmt.Sprintf("Assignment %d", i+1),
			DueDate:     due,
			TotalPoints: 100,
		}
	}
	if _, err := env.assignments.Create(ctx, nil, assignments); err != nil {
		t.Fatalf("seed assignments: %v", err)
	}

	submittedAt := due.Add(-time.Hour)
	points := 40.0
	if _, err := env.submissions.Create(ctx, nil, []*types.Submission{{
		ID:           uuid.New(),
		SchoolID:     schoolID,
		AssignmentID: assignments[0].ID,
		StudentID:    student.ID,
		Status:       types.SubmissionGraded,
		PointsEarned: &points,
		SubmittedAt:  &submittedAt,
	}}); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return student.ID
}
