package runtime

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/types"
)

// Context is the execution handle a pipeline receives for one claimed run.
// Progress and terminal-state writes go through it, so pipelines never touch
// the job_run table directly.
type Context struct {
	ctx  context.Context
	log  *logger.Logger
	run  *types.JobRun
	jobs repos.JobRunRepo
}

func NewContext(ctx context.Context, log *logger.Logger, run *types.JobRun, jobs repos.JobRunRepo) *Context {
	return &Context{
		ctx:  ctx,
		log:  log.With("job_id", run.ID, "job_type", run.JobType),
		run:  run,
		jobs: jobs,
	}
}

func (c *Context) Ctx() context.Context { return c.ctx }
func (c *Context) Log() *logger.Logger  { return c.log }
func (c *Context) Run() *types.JobRun   { return c.run }

// Payload decodes the run's payload into v. An empty payload is not an
// error; v is left untouched.
func (c *Context) Payload(v interface{}) error {
	if len(c.run.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(c.run.Payload, v)
}

// Progress records the stage and percent and doubles as a heartbeat.
func (c *Context) Progress(stage string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	err := c.jobs.UpdateFields(c.ctx, nil, c.run.ID, map[string]interface{}{
		"stage":        stage,
		"progress":     percent,
		"heartbeat_at": time.Now(),
	})
	if err != nil {
		c.log.Warn("failed to record job progress", "stage", stage, "error", err)
	}
}

// Succeed marks the run succeeded with an optional result document.
func (c *Context) Succeed(result interface{}) error {
	fields := map[string]interface{}{
		"status":   types.JobSucceeded,
		"stage":    "done",
		"progress": 100,
	}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fields["result"] = datatypes.JSON(raw)
	}
	return c.jobs.UpdateFields(c.ctx, nil, c.run.ID, fields)
}
