package risk

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticDataset bootstraps training in deployments that have no labeled
// history yet. Feature distributions are parametric samplers clipped to each
// feature's valid range; labels come from the same six-rule heuristic used
// to label collected data. Callers must request it explicitly — it is never
// substituted for real data.
func SyntheticDataset(n int, seed uint64) Dataset {
	src := rand.NewSource(seed)

	attendance := distuv.Beta{Alpha: 2, Beta: 1, Src: src}
	completion := distuv.Beta{Alpha: 2, Beta: 1, Src: src}
	grade := distuv.Normal{Mu: 75, Sigma: 15, Src: src}
	lateRate := distuv.Beta{Alpha: 1, Beta: 3, Src: src}
	participation := distuv.Beta{Alpha: 2, Beta: 1, Src: src}
	studyHours := distuv.Exponential{Rate: 1.0 / 2.0, Src: src}
	prevGPA := distuv.Normal{Mu: 3.0, Sigma: 0.5, Src: src}
	curGPA := distuv.Normal{Mu: 3.0, Sigma: 0.5, Src: src}
	loginGap := distuv.Exponential{Rate: 1.0 / 3.0, Src: src}
	failedRate := distuv.Beta{Alpha: 1, Beta: 4, Src: src}
	delayHours := distuv.Exponential{Rate: 1.0 / 12.0, Src: src}
	loginFreq := distuv.Beta{Alpha: 2, Beta: 1, Src: src}

	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		fv := FeatureVector{
			AttendanceRate:           clamp01(attendance.Rand()),
			AssignmentCompletionRate: clamp01(completion.Rand()),
			AverageGrade:             clampRange(grade.Rand(), 0, 100),
			LateSubmissionsRate:      clamp01(lateRate.Rand()),
			ParticipationScore:       clamp01(participation.Rand()),
			StudyTimeHours:           clampRange(studyHours.Rand(), 0, 24),
			PreviousSemesterGPA:      clampRange(prevGPA.Rand(), 0, 4),
			CurrentSemesterGPA:       clampRange(curGPA.Rand(), 0, 4),
			DaysSinceLastLogin:       clampRange(loginGap.Rand(), 0, 365),
			FailedAssignmentsRate:    clamp01(failedRate.Rand()),
			SubmissionDelayHours:     clampRange(delayHours.Rand(), 0, 168),
			LoginFrequency:           clamp01(loginFreq.Rand()),
		}
		samples = append(samples, Sample{Features: fv, AtRisk: HeuristicLabel(fv)})
	}
	return Dataset{Samples: samples, Synthetic: true}
}

// HeuristicLabel marks a student at risk when two or more of six warning
// rules fire. It labels both synthetic rows and collected observations when
// no historical outcome data exists.
func HeuristicLabel(fv FeatureVector) bool {
	fired := 0
	if fv.AttendanceRate < 0.8 {
		fired++
	}
	if fv.AssignmentCompletionRate < 0.7 {
		fired++
	}
	if fv.AverageGrade < 70 {
		fired++
	}
	if fv.DaysSinceLastLogin > 7 {
		fired++
	}
	if fv.LateSubmissionsRate > 0.3 {
		fired++
	}
	if fv.ParticipationScore < 0.6 {
		fired++
	}
	return fired >= 2
}
