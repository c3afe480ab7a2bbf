package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/types"
)

func TestModelSnapshotVersioningAndActivation(t *testing.T) {
	db := newTestDB(t)
	repo := NewModelSnapshotRepo(db, testLogger())
	ctx := context.Background()
	const key = "academic_risk"

	v, err := repo.NextVersion(ctx, nil, key)
	if err != nil {
		t.Fatalf("NextVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("first version = %d, want 1", v)
	}

	first, err := repo.Create(ctx, nil, &types.ModelSnapshot{
		ModelKey:   key,
		Version:    1,
		ParamsJSON: datatypes.JSON(`{"bias":0.1}`),
	})
	if err != nil {
		t.Fatalf("Create v1: %v", err)
	}
	if err := repo.ActivateExclusive(ctx, nil, first.ID, key); err != nil {
		t.Fatalf("activate v1: %v", err)
	}

	v, err = repo.NextVersion(ctx, nil, key)
	if err != nil {
		t.Fatalf("NextVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("next version = %d, want 2", v)
	}
	second, err := repo.Create(ctx, nil, &types.ModelSnapshot{
		ModelKey:   key,
		Version:    2,
		ParamsJSON: datatypes.JSON(`{"bias":0.2}`),
	})
	if err != nil {
		t.Fatalf("Create v2: %v", err)
	}
	if err := repo.ActivateExclusive(ctx, nil, second.ID, key); err != nil {
		t.Fatalf("activate v2: %v", err)
	}

	active, err := repo.GetActiveByKey(ctx, nil, key)
	if err != nil {
		t.Fatalf("GetActiveByKey: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("active = %v, want v2", active)
	}
	var activeCount int64
	if err := db.Model(&types.ModelSnapshot{}).Where("model_key = ? AND active = ?", key, true).
		Count(&activeCount).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if activeCount != 1 {
		t.Errorf("active snapshots = %d, want exactly 1", activeCount)
	}
}

func TestModelSnapshotNoActiveMeansUntrained(t *testing.T) {
	db := newTestDB(t)
	repo := NewModelSnapshotRepo(db, testLogger())
	active, err := repo.GetActiveByKey(context.Background(), nil, "academic_risk")
	if err != nil {
		t.Fatalf("GetActiveByKey: %v", err)
	}
	if active != nil {
		t.Errorf("active = %v, want nil", active)
	}
}
