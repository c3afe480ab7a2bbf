package risk

import (
	"context"

	"github.com/google/uuid"
)

// Telemetry carries the engagement signals that do not live in the academic
// records store (attendance tracking, platform analytics, registrar GPA).
type Telemetry struct {
	AttendanceRate       float64
	ParticipationScore   float64
	StudyTimeHours       float64
	PreviousSemesterGPA  float64
	CurrentSemesterGPA   float64
	LoginFrequency       float64
	SubmissionDelayHours float64
}

// TelemetrySource supplies engagement telemetry for a student. Production
// deployments back this with the attendance and analytics systems; the
// pipeline itself never computes these signals.
type TelemetrySource interface {
	Collect(ctx context.Context, schoolID, studentID uuid.UUID) (Telemetry, error)
}

// StaticTelemetry is the stub source: fixed mid-range values for every
// student. It stands in until real telemetry integrations land and is the
// declared gap of this pipeline, not a modeling choice.
type StaticTelemetry struct{}

func (StaticTelemetry) Collect(ctx context.Context, schoolID, studentID uuid.UUID) (Telemetry, error) {
	return Telemetry{
		AttendanceRate:       0.85,
		ParticipationScore:   0.75,
		StudyTimeHours:       2.5,
		PreviousSemesterGPA:  3.2,
		CurrentSemesterGPA:   3.0,
		LoginFrequency:       0.8,
		SubmissionDelayHours: 24,
	}, nil
}
