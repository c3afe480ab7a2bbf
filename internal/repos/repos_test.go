package repos

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// newTestDB opens a per-test in-memory database. The shared cache keeps the
// schema visible across the pool's connections.
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
