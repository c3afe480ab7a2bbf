package riskmodeltrain

import (
	"github.com/google/uuid"

	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/services"
)

type payload struct {
	SchoolID      uuid.UUID `json:"school_id"`
	UseSynthetic  bool      `json:"use_synthetic"`
	SyntheticSize int       `json:"synthetic_size"`
}

func run(rc *runtime.Context, deps Deps) error {
	var p payload
	if err := rc.Payload(&p); err != nil {
		return err
	}
	if p.SchoolID == uuid.Nil {
		p.SchoolID = rc.Run().SchoolID
	}

	rc.Progress("building dataset", 10)
	outcome, err := deps.Training.Run(rc.Ctx(), services.TrainInput{
		SchoolID:      p.SchoolID,
		UseSynthetic:  p.UseSynthetic,
		SyntheticSize: p.SyntheticSize,
	})
	if err != nil {
		return err
	}
	return rc.Succeed(map[string]interface{}{
		"session_id": outcome.Session.ID,
		"version":    outcome.Snapshot.Version,
		"accuracy":   outcome.Accuracy,
		"train_size": outcome.TrainSize,
		"test_size":  outcome.TestSize,
	})
}
