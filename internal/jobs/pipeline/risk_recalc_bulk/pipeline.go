package riskrecalcbulk

import (
	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/services"
)

type payload struct {
	SchoolID *uuid.UUID `json:"school_id"`
	Force    bool       `json:"force"`
}

func run(rc *runtime.Context, deps Deps) error {
	var p payload
	if err := rc.Payload(&p); err != nil {
		return err
	}
	if p.SchoolID == nil && rc.Run().SchoolID != uuid.Nil {
		schoolID := rc.Run().SchoolID
		p.SchoolID = &schoolID
	}

	rc.Progress("scanning", 0)
	result, err := deps.Risk.RecalculateAll(rc.Ctx(), services.BulkOptions{
		SchoolID: p.SchoolID,
		Force:    p.Force,
		Progress: func(done, total int) {
			if total == 0 {
				return
			}
			// Progress writes per student would hammer the table on big
			// tenants; report every 5%.
			pct := done * 100 / total
			if pct%5 == 0 || done == total {
				rc.Progress("recalculating", pct)
			}
		},
	})
	if err != nil {
		return err
	}
	return rc.Succeed(result)
}
