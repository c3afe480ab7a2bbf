package risk

// Feature names, in model input order. The order is part of the artifact
// contract: trained weights are keyed by name but vectorized by this slice.
var FeatureNames = []string{
	"attendance_rate",
	"assignment_completion_rate",
	"average_grade",
	"late_submissions_rate",
	"participation_score",
	"study_time_hours",
	"previous_semester_gpa",
	"current_semester_gpa",
	"days_since_last_login",
	"failed_assignments_rate",
	"submission_delay_hours",
	"login_frequency",
}

// FeatureLabels maps feature names to the human-readable risk factor labels
// surfaced in predictions, alerts and recommendations.
var FeatureLabels = map[string]string{
	"attendance_rate":            "Low attendance",
	"assignment_completion_rate": "Incomplete assignments",
	"average_grade":              "Low grades",
	"late_submissions_rate":      "Late submissions",
	"participation_score":        "Low participation",
	"study_time_hours":           "Insufficient study time",
	"previous_semester_gpa":      "Low previous semester GPA",
	"current_semester_gpa":       "Low current semester GPA",
	"days_since_last_login":      "Recent inactivity",
	"failed_assignments_rate":    "Failed assignments",
	"submission_delay_hours":     "Submission delays",
	"login_frequency":            "Infrequent logins",
}

const (
	maxGrade              = 100.0
	maxLoginGapDays       = 365.0
	maxStudyHours         = 24.0
	maxSubmissionDelayHrs = 168.0
	neverLoggedInSentinel = 999.0
)

// FeatureVector carries raw (un-normalized) feature values for one student.
type FeatureVector struct {
	AttendanceRate           float64 `json:"attendance_rate"`
	AssignmentCompletionRate float64 `json:"assignment_completion_rate"`
	AverageGrade             float64 `json:"average_grade"`
	LateSubmissionsRate      float64 `json:"late_submissions_rate"`
	ParticipationScore       float64 `json:"participation_score"`
	StudyTimeHours           float64 `json:"study_time_hours"`
	PreviousSemesterGPA      float64 `json:"previous_semester_gpa"`
	CurrentSemesterGPA       float64 `json:"current_semester_gpa"`
	DaysSinceLastLogin       float64 `json:"days_since_last_login"`
	FailedAssignmentsRate    float64 `json:"failed_assignments_rate"`
	SubmissionDelayHours     float64 `json:"submission_delay_hours"`
	LoginFrequency           float64 `json:"login_frequency"`
}

// Raw returns the raw values in FeatureNames order.
func (fv FeatureVector) Raw() []float64 {
	return []float64{
		fv.AttendanceRate,
		fv.AssignmentCompletionRate,
		fv.AverageGrade,
		fv.LateSubmissionsRate,
		fv.ParticipationScore,
		fv.StudyTimeHours,
		fv.PreviousSemesterGPA,
		fv.CurrentSemesterGPA,
		fv.DaysSinceLastLogin,
		fv.FailedAssignmentsRate,
		fv.SubmissionDelayHours,
		fv.LoginFrequency,
	}
}

// Normalize maps every feature into [0,1] regardless of upstream noise.
// Ratio features are clamped; bounded quantities divide by their cap.
// GPA shares the grade scale, matching the behavior of the deployed
// predictor this replaces.
func (fv FeatureVector) Normalize() []float64 {
	return []float64{
		clamp01(fv.AttendanceRate),
		clamp01(fv.AssignmentCompletionRate),
		clampRange(fv.AverageGrade, 0, maxGrade) / maxGrade,
		clamp01(fv.LateSubmissionsRate),
		clamp01(fv.ParticipationScore),
		clampRange(fv.StudyTimeHours, 0, maxStudyHours) / maxStudyHours,
		clampRange(fv.PreviousSemesterGPA, 0, maxGrade) / maxGrade,
		clampRange(fv.CurrentSemesterGPA, 0, maxGrade) / maxGrade,
		clampRange(fv.DaysSinceLastLogin, 0, maxLoginGapDays) / maxLoginGapDays,
		clamp01(fv.FailedAssignmentsRate),
		clampRange(fv.SubmissionDelayHours, 0, maxSubmissionDelayHrs) / maxSubmissionDelayHrs,
		clamp01(fv.LoginFrequency),
	}
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
