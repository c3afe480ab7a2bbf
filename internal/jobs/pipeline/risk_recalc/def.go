package riskrecalc

import (
	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/services"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type Deps struct {
	Risk services.RiskService
}

func Register(reg *runtime.Registry, deps Deps) {
	reg.Register(types.JobTypeRiskRecalc, func(rc *runtime.Context) error {
		return run(rc, deps)
	})
}
