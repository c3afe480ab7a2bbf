package riskmodeltrain

import (
	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/services"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type Deps struct {
	Training services.TrainingService
}

func Register(reg *runtime.Registry, deps Deps) {
	reg.Register(types.JobTypeRiskModelTrain, func(rc *runtime.Context) error {
		return run(rc, deps)
	})
}
