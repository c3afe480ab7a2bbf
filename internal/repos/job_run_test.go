package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/types"
)

func TestJobRunCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRunRepo(db, testLogger())
	ctx := context.Background()

	run, err := repo.Create(ctx, nil, &types.JobRun{
		SchoolID: uuid.New(),
		JobType:  types.JobTypeRiskRecalc,
		Payload:  datatypes.JSON(`{"student_id":"x"}`),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Error("no id assigned")
	}
	if run.Status != types.JobQueued {
		t.Errorf("status = %s, want queued", run.Status)
	}
	if run.Stage != "queued" {
		t.Errorf("stage = %s, want queued", run.Stage)
	}

	fetched, err := repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.JobType != types.JobTypeRiskRecalc {
		t.Fatalf("fetched = %v", fetched)
	}
}

func TestJobRunUpdateFieldsAndHeartbeat(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRunRepo(db, testLogger())
	ctx := context.Background()

	run, err := repo.Create(ctx, nil, &types.JobRun{
		SchoolID: uuid.New(),
		JobType:  types.JobTypePredictionCleanup,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = repo.UpdateFields(ctx, nil, run.ID, map[string]interface{}{
		"status":   types.JobSucceeded,
		"stage":    "done",
		"progress": 100,
		"result":   datatypes.JSON(`{"predictions_deactivated":3}`),
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.Heartbeat(ctx, nil, run.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	fetched, err := repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != types.JobSucceeded || fetched.Progress != 100 {
		t.Errorf("fetched = %s/%d, want succeeded/100", fetched.Status, fetched.Progress)
	}
	if fetched.HeartbeatAt == nil {
		t.Error("heartbeat not recorded")
	}
	if len(fetched.Result) == 0 {
		t.Error("result not stored")
	}
}

func TestJobRunGetByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRunRepo(db, testLogger())
	run, err := repo.GetByID(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run != nil {
		t.Errorf("run = %v, want nil", run)
	}
}
