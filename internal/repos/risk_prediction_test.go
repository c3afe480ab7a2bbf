package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/types"
)

func TestRiskPredictionUpsertKeepsOneRowPerStudent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRiskPredictionRepo(db, testLogger())
	ctx := context.Background()
	schoolID := uuid.New()
	studentID := uuid.New()

	first, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
		SchoolID:  schoolID,
		StudentID: studentID,
		RiskScore: 0.3,
		RiskLevel: types.RiskMedium,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
		SchoolID:  schoolID,
		StudentID: studentID,
		RiskScore: 0.8,
		RiskLevel: types.RiskCritical,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.RiskScore != 0.8 || second.RiskLevel != types.RiskCritical {
		t.Errorf("upsert did not overwrite: score %v level %s", second.RiskScore, second.RiskLevel)
	}
	var count int64
	if err := db.Model(&types.RiskPrediction{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestRiskPredictionUpsertIsPerTenant(t *testing.T) {
	db := newTestDB(t)
	repo := NewRiskPredictionRepo(db, testLogger())
	ctx := context.Background()
	studentID := uuid.New()

	for _, schoolID := range []uuid.UUID{uuid.New(), uuid.New()} {
		if _, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
			SchoolID:  schoolID,
			StudentID: studentID,
			RiskScore: 0.1,
			RiskLevel: types.RiskLow,
		}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	var count int64
	if err := db.Model(&types.RiskPrediction{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want one per tenant", count)
	}
}

func TestRiskPredictionRetentionSweep(t *testing.T) {
	db := newTestDB(t)
	repo := NewRiskPredictionRepo(db, testLogger())
	ctx := context.Background()
	schoolID := uuid.New()

	stale, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
		SchoolID:  schoolID,
		StudentID: uuid.New(),
		RiskScore: 0.4,
		RiskLevel: types.RiskMedium,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Backdate past the retention window.
	old := time.Now().Add(-31 * 24 * time.Hour)
	if err := db.Model(&types.RiskPrediction{}).Where("id = ?", stale.ID).
		Update("last_updated", old).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	fresh, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
		SchoolID:  schoolID,
		StudentID: uuid.New(),
		RiskScore: 0.2,
		RiskLevel: types.RiskLow,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	n, err := repo.DeactivateOlderThan(ctx, nil, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeactivateOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("deactivated = %d, want 1", n)
	}
	if got, err := repo.GetActiveByStudent(ctx, nil, schoolID, stale.StudentID); err != nil || got != nil {
		t.Errorf("stale prediction still served: %v, err %v", got, err)
	}
	if got, err := repo.GetActiveByStudent(ctx, nil, schoolID, fresh.StudentID); err != nil || got == nil {
		t.Errorf("fresh prediction dropped: %v, err %v", got, err)
	}
	// The stale row survives for audit.
	var count int64
	if err := db.Model(&types.RiskPrediction{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

func TestRiskPredictionCountAndListByLevel(t *testing.T) {
	db := newTestDB(t)
	repo := NewRiskPredictionRepo(db, testLogger())
	ctx := context.Background()
	schoolID := uuid.New()

	for _, level := range []string{types.RiskLow, types.RiskMedium, types.RiskHigh, types.RiskHigh, types.RiskCritical} {
		if _, err := repo.Upsert(ctx, nil, &types.RiskPrediction{
			SchoolID:  schoolID,
			StudentID: uuid.New(),
			RiskScore: 0.5,
			RiskLevel: level,
		}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	counts, err := repo.CountActiveByLevel(ctx, nil, schoolID)
	if err != nil {
		t.Fatalf("CountActiveByLevel: %v", err)
	}
	byLevel := map[string]int64{}
	for _, c := range counts {
		byLevel[c.RiskLevel] = c.Count
	}
	if byLevel[types.RiskHigh] != 2 || byLevel[types.RiskLow] != 1 {
		t.Errorf("counts = %v", byLevel)
	}

	highRisk, err := repo.ListActiveByLevel(ctx, nil, schoolID, []string{types.RiskHigh, types.RiskCritical})
	if err != nil {
		t.Fatalf("ListActiveByLevel: %v", err)
	}
	if len(highRisk) != 3 {
		t.Errorf("high risk rows = %d, want 3", len(highRisk))
	}
	// Other tenants never bleed in.
	otherCounts, err := repo.CountActiveByLevel(ctx, nil, uuid.New())
	if err != nil {
		t.Fatalf("CountActiveByLevel: %v", err)
	}
	if len(otherCounts) != 0 {
		t.Errorf("foreign tenant sees %v", otherCounts)
	}
}
