package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/types"
)

func TestAlertActiveExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewPredictiveAlertRepo(db, testLogger())
	ctx := context.Background()
	schoolID := uuid.New()
	studentID := uuid.New()

	exists, err := repo.ActiveExists(ctx, nil, schoolID, studentID, types.AlertAcademicRisk)
	if err != nil {
		t.Fatalf("ActiveExists: %v", err)
	}
	if exists {
		t.Error("no alerts yet, ActiveExists = true")
	}

	if _, err := repo.Create(ctx, nil, &types.PredictiveAlert{
		SchoolID:  schoolID,
		StudentID: studentID,
		AlertType: types.AlertAcademicRisk,
		Priority:  types.PriorityHigh,
		IsActive:  true,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err = repo.ActiveExists(ctx, nil, schoolID, studentID, types.AlertAcademicRisk)
	if err != nil {
		t.Fatalf("ActiveExists: %v", err)
	}
	if !exists {
		t.Error("ActiveExists = false after create")
	}
	// Different type and different student both miss.
	if got, _ := repo.ActiveExists(ctx, nil, schoolID, studentID, types.AlertEngagementDrop); got {
		t.Error("ActiveExists matched a different alert type")
	}
	if got, _ := repo.ActiveExists(ctx, nil, schoolID, uuid.New(), types.AlertAcademicRisk); got {
		t.Error("ActiveExists matched a different student")
	}
}

func TestAlertAcknowledgeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPredictiveAlertRepo(db, testLogger())
	ctx := context.Background()

	alert, err := repo.Create(ctx, nil, &types.PredictiveAlert{
		SchoolID:  uuid.New(),
		StudentID: uuid.New(),
		AlertType: types.AlertAcademicRisk,
		Priority:  types.PriorityCritical,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	firstUser := uuid.New()
	acked, err := repo.Acknowledge(ctx, nil, alert.ID, firstUser)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if acked.AcknowledgedBy == nil || *acked.AcknowledgedBy != firstUser {
		t.Errorf("acknowledged_by = %v, want %s", acked.AcknowledgedBy, firstUser)
	}
	if acked.AcknowledgedAt == nil {
		t.Fatal("acknowledged_at not set")
	}
	firstAt := *acked.AcknowledgedAt

	again, err := repo.Acknowledge(ctx, nil, alert.ID, uuid.New())
	if err != nil {
		t.Fatalf("second Acknowledge: %v", err)
	}
	if *again.AcknowledgedBy != firstUser {
		t.Error("second acknowledgement overwrote the first")
	}
	if d := again.AcknowledgedAt.Sub(firstAt); d < -time.Second || d > time.Second {
		t.Errorf("second acknowledgement moved the timestamp by %v", d)
	}
}

func TestAlertRetentionSweepKeepsAcknowledgedHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewPredictiveAlertRepo(db, testLogger())
	ctx := context.Background()
	schoolID := uuid.New()

	old, err := repo.Create(ctx, nil, &types.PredictiveAlert{
		SchoolID:  schoolID,
		StudentID: uuid.New(),
		AlertType: types.AlertAcademicRisk,
		Priority:  types.PriorityHigh,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Model(&types.PredictiveAlert{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-40*24*time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if _, err := repo.Create(ctx, nil, &types.PredictiveAlert{
		SchoolID:  schoolID,
		StudentID: uuid.New(),
		AlertType: types.AlertAcademicRisk,
		Priority:  types.PriorityCritical,
		IsActive:  true,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.DeactivateOlderThan(ctx, nil, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeactivateOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("deactivated = %d, want 1", n)
	}
	active, err := repo.ListActive(ctx, nil, schoolID, nil)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active alerts = %d, want 1", len(active))
	}
	// The swept alert still exists for audit.
	swept, err := repo.GetByID(ctx, nil, old.ID)
	if err != nil || swept == nil {
		t.Fatalf("swept alert gone: %v, err %v", swept, err)
	}
	if swept.IsActive {
		t.Error("swept alert still active")
	}
}
