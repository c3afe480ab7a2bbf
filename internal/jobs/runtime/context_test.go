package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/types"
)

func newTestJobRepo(t *testing.T) repos.JobRunRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&types.JobRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repos.NewJobRunRepo(db, &logger.Logger{SugaredLogger: zap.NewNop().Sugar()})
}

func TestContextPayloadProgressSucceed(t *testing.T) {
	repo := newTestJobRepo(t)
	ctx := context.Background()
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}

	studentID := uuid.New()
	run, err := repo.Create(ctx, nil, &types.JobRun{
		SchoolID: uuid.New(),
		JobType:  types.JobTypeRiskRecalc,
		Payload:  datatypes.JSON(fmt.Sprintf(`{"student_id":%q}`, studentID)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rc := NewContext(ctx, log, run, repo)

	var p struct {
		StudentID uuid.UUID `json:"student_id"`
	}
	if err := rc.Payload(&p); err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if p.StudentID != studentID {
		t.Errorf("payload student = %s, want %s", p.StudentID, studentID)
	}

	rc.Progress("recalculating", 40)
	fetched, err := repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Stage != "recalculating" || fetched.Progress != 40 {
		t.Errorf("after Progress: %s/%d", fetched.Stage, fetched.Progress)
	}
	if fetched.HeartbeatAt == nil {
		t.Error("Progress did not heartbeat")
	}

	if err := rc.Succeed(map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	fetched, err = repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != types.JobSucceeded || fetched.Progress != 100 || fetched.Stage != "done" {
		t.Errorf("after Succeed: %s %s %d", fetched.Status, fetched.Stage, fetched.Progress)
	}
	var result map[string]string
	if err := json.Unmarshal(fetched.Result, &result); err != nil {
		t.Fatalf("result unmarshal: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("result = %v", result)
	}
}

func TestContextEmptyPayloadIsNotAnError(t *testing.T) {
	repo := newTestJobRepo(t)
	ctx := context.Background()
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	run, err := repo.Create(ctx, nil, &types.JobRun{SchoolID: uuid.New(), JobType: types.JobTypePredictionCleanup})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rc := NewContext(ctx, log, run, repo)
	var p struct {
		Force bool `json:"force"`
	}
	if err := rc.Payload(&p); err != nil {
		t.Fatalf("Payload on empty: %v", err)
	}
	if p.Force {
		t.Error("empty payload mutated target")
	}
}

func TestContextProgressClampsPercent(t *testing.T) {
	repo := newTestJobRepo(t)
	ctx := context.Background()
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	run, err := repo.Create(ctx, nil, &types.JobRun{SchoolID: uuid.New(), JobType: types.JobTypeRiskRecalcBulk})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rc := NewContext(ctx, log, run, repo)

	rc.Progress("overflow", 140)
	fetched, _ := repo.GetByID(ctx, nil, run.ID)
	if fetched.Progress != 100 {
		t.Errorf("progress = %d, want clamped 100", fetched.Progress)
	}
	rc.Progress("underflow", -3)
	fetched, _ = repo.GetByID(ctx, nil, run.ID)
	if fetched.Progress != 0 {
		t.Errorf("progress = %d, want clamped 0", fetched.Progress)
	}
}
