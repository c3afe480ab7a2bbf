package predictioncleanup

import (
	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
)

func run(rc *runtime.Context, deps Deps) error {
	rc.Progress("sweeping", 10)
	result, err := deps.Risk.CleanupExpired(rc.Ctx())
	if err != nil {
		return err
	}
	return rc.Succeed(result)
}
