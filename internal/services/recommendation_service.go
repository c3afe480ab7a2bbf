package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type CompleteInput struct {
	Feedback string `json:"feedback"`
	Rating   *int   `json:"rating"`
}

type RecommendationService interface {
	GenerateForPrediction(ctx context.Context, prediction *types.RiskPrediction, assessment risk.Assessment) ([]*types.LearningRecommendation, error)
	ListForStudent(ctx context.Context, schoolID, studentID uuid.UUID, includeCompleted bool) ([]*types.LearningRecommendation, error)
	Complete(ctx context.Context, schoolID, studentID, recommendationID uuid.UUID, input CompleteInput) (*types.LearningRecommendation, error)
}

type recommendationService struct {
	log  *logger.Logger
	recs repos.LearningRecommendationRepo
}

func NewRecommendationService(baseLog *logger.Logger, recs repos.LearningRecommendationRepo) RecommendationService {
	return &recommendationService{
		log:  baseLog.With("service", "RecommendationService"),
		recs: recs,
	}
}

// recommendationTemplate maps an identified risk factor to a concrete study
// intervention.
type recommendationTemplate struct {
	Type            string
	Title           string
	Description     string
	ExpectedImpact  float64
	TimeRequirement string
	Difficulty      string
	Resources       []string
}

var templatesByFactor = map[string]recommendationTemplate{
	"Low grades": {
		Type:            types.RecommendationStudyResource,
		Title:           "Targeted study resources",
		Description:     "Work through curated material for the courses where grades are lowest, starting with the most recent failed assignments.",
		ExpectedImpact:  0.7,
		TimeRequirement: "3-5 hours per week",
		Difficulty:      "MEDIUM",
		Resources:       []string{"Course review guides", "Practice problem sets", "Recorded lectures"},
	},
	"Incomplete assignments": {
		Type:            types.RecommendationLearningStrategy,
		Title:           "Assignment planning strategy",
		Description:     "Break pending assignments into daily tasks and reserve fixed time slots before each due date.",
		ExpectedImpact:  0.8,
		TimeRequirement: "30 minutes of planning per week",
		Difficulty:      "LOW",
		Resources:       []string{"Weekly planner template", "Deadline tracking checklist"},
	},
	"Low participation": {
		Type:            types.RecommendationPeerCollaboration,
		Title:           "Join a study group",
		Description:     "Regular sessions with classmates raise engagement and surface gaps early.",
		ExpectedImpact:  0.6,
		TimeRequirement: "2 hours per week",
		Difficulty:      "LOW",
		Resources:       []string{"Study group directory", "Collaboration room booking"},
	},
}

var generalTemplate = recommendationTemplate{
	Type:            types.RecommendationLearningStrategy,
	Title:           "Structured study routine",
	Description:     "Establish a fixed daily study block and review progress with a weekly self-check.",
	ExpectedImpact:  0.5,
	TimeRequirement: "1 hour per day",
	Difficulty:      "LOW",
	Resources:       []string{"Study schedule template"},
}

// GenerateForPrediction creates factor-driven recommendations for MEDIUM and
// worse assessments. Pending recommendations suppress new ones so students
// are not buried under duplicates on every recalculation.
func (s *recommendationService) GenerateForPrediction(ctx context.Context, prediction *types.RiskPrediction, assessment risk.Assessment) ([]*types.LearningRecommendation, error) {
	if assessment.RiskLevel == types.RiskLow {
		return nil, nil
	}
	pending, err := s.recs.PendingExists(ctx, nil, prediction.SchoolID, prediction.StudentID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, nil
	}

	var chosen []recommendationTemplate
	for label := range assessment.Factors {
		if tpl, ok := templatesByFactor[label]; ok {
			chosen = append(chosen, tpl)
		}
	}
	if len(chosen) == 0 {
		if assessment.RiskLevel == types.RiskMedium {
			return nil, nil
		}
		chosen = append(chosen, generalTemplate)
	}

	recs := make([]*types.LearningRecommendation, 0, len(chosen))
	for _, tpl := range chosen {
		resources, err := json.Marshal(tpl.Resources)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &types.LearningRecommendation{
			SchoolID:           prediction.SchoolID,
			StudentID:          prediction.StudentID,
			RecommendationType: tpl.Type,
			Title:              tpl.Title,
			Description:        tpl.Description,
			ExpectedImpact:     tpl.ExpectedImpact,
			TimeRequirement:    tpl.TimeRequirement,
			DifficultyLevel:    tpl.Difficulty,
			Resources:          datatypes.JSON(resources),
		})
	}
	created, err := s.recs.Create(ctx, nil, recs)
	if err != nil {
		return nil, err
	}
	s.log.Info("recommendations generated",
		"school_id", prediction.SchoolID,
		"student_id", prediction.StudentID,
		"count", len(created),
	)
	return created, nil
}

func (s *recommendationService) ListForStudent(ctx context.Context, schoolID, studentID uuid.UUID, includeCompleted bool) ([]*types.LearningRecommendation, error) {
	return s.recs.ListByStudent(ctx, nil, schoolID, studentID, includeCompleted)
}

func (s *recommendationService) Complete(ctx context.Context, schoolID, studentID, recommendationID uuid.UUID, input CompleteInput) (*types.LearningRecommendation, error) {
	rec, err := s.recs.GetByID(ctx, nil, recommendationID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.SchoolID != schoolID || rec.StudentID != studentID {
		return nil, apierr.New(http.StatusNotFound, "RECOMMENDATION_NOT_FOUND", errors.New("recommendation not found"))
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_RATING", errors.New("rating must be between 1 and 5"))
	}
	return s.recs.Complete(ctx, nil, recommendationID, input.Feedback, input.Rating)
}
