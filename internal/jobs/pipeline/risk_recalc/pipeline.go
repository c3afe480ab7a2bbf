package riskrecalc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/risk"
)

type payload struct {
	SchoolID  uuid.UUID `json:"school_id"`
	StudentID uuid.UUID `json:"student_id"`
}

// run recalculates risk for a single student. A student without academic
// data succeeds with a skipped result: retrying would not conjure data.
func run(rc *runtime.Context, deps Deps) error {
	var p payload
	if err := rc.Payload(&p); err != nil {
		return err
	}
	if p.SchoolID == uuid.Nil {
		p.SchoolID = rc.Run().SchoolID
	}
	if p.StudentID == uuid.Nil && rc.Run().EntityID != nil {
		p.StudentID = *rc.Run().EntityID
	}
	if p.SchoolID == uuid.Nil || p.StudentID == uuid.Nil {
		return fmt.Errorf("risk recalc payload missing school or student id")
	}

	rc.Progress("recalculating", 10)
	prediction, err := deps.Risk.RecalculateStudent(rc.Ctx(), p.SchoolID, p.StudentID)
	if err != nil {
		if errors.Is(err, risk.ErrNoData) {
			rc.Log().Info("student has no academic data, skipping", "student_id", p.StudentID)
			return rc.Succeed(map[string]interface{}{"status": "skipped", "reason": "no_data"})
		}
		return err
	}
	return rc.Succeed(map[string]interface{}{
		"status":     "ok",
		"risk_level": prediction.RiskLevel,
		"risk_score": prediction.RiskScore,
	})
}
