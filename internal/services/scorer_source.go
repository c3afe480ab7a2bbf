package services

import (
	"context"
	"sync/atomic"

	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
)

// ScorerSource holds the scorer in use. It starts on the rule-based
// fallback, loads the active model snapshot on Reload, and is swapped
// atomically when training deploys a new artifact. Readers never block.
type ScorerSource struct {
	log       *logger.Logger
	snapshots repos.ModelSnapshotRepo
	current   atomic.Value // always holds a scorerBox
}

// scorerBox keeps the stored type constant: atomic.Value unwraps interface
// values to their dynamic type, so storing RuleScorer and *ModelScorer
// directly would trip its consistency check on the first deployment.
type scorerBox struct {
	scorer risk.Scorer
}

func NewScorerSource(baseLog *logger.Logger, snapshots repos.ModelSnapshotRepo) *ScorerSource {
	s := &ScorerSource{
		log:       baseLog.With("component", "ScorerSource"),
		snapshots: snapshots,
	}
	s.current.Store(scorerBox{scorer: risk.RuleScorer{}})
	return s
}

func (s *ScorerSource) Current() risk.Scorer {
	return s.current.Load().(scorerBox).scorer
}

// Reload loads the active snapshot from model_snapshot. No snapshot or an
// unreadable artifact keeps the fallback in place.
func (s *ScorerSource) Reload(ctx context.Context) error {
	snapshot, err := s.snapshots.GetActiveByKey(ctx, nil, risk.ModelKey)
	if err != nil {
		return err
	}
	if snapshot == nil {
		s.current.Store(scorerBox{scorer: risk.RuleScorer{}})
		s.log.Info("no active model snapshot, serving rule-based fallback")
		return nil
	}
	scorer := risk.LoadScorer(snapshot.ParamsJSON)
	s.current.Store(scorerBox{scorer: scorer})
	s.log.Info("scorer reloaded",
		"model_key", snapshot.ModelKey,
		"version", snapshot.Version,
		"trained", scorer.Trained(),
	)
	return nil
}

// Swap installs a freshly trained scorer without a round trip to storage.
func (s *ScorerSource) Swap(scorer risk.Scorer) {
	if scorer == nil {
		return
	}
	s.current.Store(scorerBox{scorer: scorer})
}
