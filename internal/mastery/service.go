package mastery

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/abhisek/lexiq/internal/store"
)

// Service owns the learner's progress map. It is the single writer: every
// change goes through RecordAnswer or Reset, which compute a new record and
// install it. Callers must serialize calls.
type Service struct {
	items     map[string]ItemProgress
	repo      store.ProgressRepo
	eventRepo store.EventRepo
}

// NewService creates a service. Either repo may be nil, in which case
// changes stay in memory.
func NewService(repo store.ProgressRepo, eventRepo store.EventRepo) *Service {
	return &Service{
		items:     make(map[string]ItemProgress),
		repo:      repo,
		eventRepo: eventRepo,
	}
}

// Load replaces the in-memory state with what the progress repo holds.
func (s *Service) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	recs, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	s.items = FromRecords(recs)
	return nil
}

// Get returns the progress for an item, or a default New record if the item
// has never been answered. The default is not stored.
func (s *Service) Get(itemID string) ItemProgress {
	if p, ok := s.items[itemID]; ok {
		return p
	}
	return NewItemProgress(itemID)
}

// Snapshot returns an independent copy of the progress map. ItemProgress
// holds no references, so a shallow map copy is a deep copy.
func (s *Service) Snapshot() map[string]ItemProgress {
	return maps.Clone(s.items)
}

// Len returns the number of items with recorded progress.
func (s *Service) Len() int {
	return len(s.items)
}

// RecordAnswer applies one answer and installs the new record. It returns the
// new record and a Transition when the mastery level changed.
func (s *Service) RecordAnswer(ctx context.Context, itemID string, correct, isDontKnow bool, now time.Time) (ItemProgress, *Transition, error) {
	prev := s.Get(itemID)
	next := RecordAnswer(prev, correct, isDontKnow, now)

	if s.repo != nil {
		if err := s.repo.Save(ctx, ToRecord(next)); err != nil {
			return prev, nil, err
		}
	}
	s.items[itemID] = next

	if s.eventRepo != nil {
		err := s.eventRepo.AppendAnswer(ctx, store.AnswerEventData{
			ItemID:        itemID,
			Correct:       correct,
			DontKnow:      isDontKnow && !correct,
			PositionAfter: next.Position,
			Timestamp:     now,
		})
		if err != nil {
			return next, transition(prev, next), fmt.Errorf("append answer event: %w", err)
		}
	}

	return next, transition(prev, next), nil
}

// Reset forgets one item's progress.
func (s *Service) Reset(ctx context.Context, itemID string) error {
	if s.repo != nil {
		if err := s.repo.Reset(ctx, itemID); err != nil {
			return err
		}
	}
	delete(s.items, itemID)
	return nil
}

// ResetAll forgets all progress.
func (s *Service) ResetAll(ctx context.Context) error {
	if s.repo != nil {
		if err := s.repo.ResetAll(ctx); err != nil {
			return err
		}
	}
	s.items = make(map[string]ItemProgress)
	return nil
}

// MasteredItems returns the set of item IDs at LevelMastered.
func (s *Service) MasteredItems() map[string]bool {
	result := make(map[string]bool)
	for id, p := range s.items {
		if p.Level() == LevelMastered {
			result[id] = true
		}
	}
	return result
}

func transition(prev, next ItemProgress) *Transition {
	from, to := prev.Level(), next.Level()
	if from == to {
		return nil
	}
	t := &Transition{ItemID: next.ID, From: from, To: to}
	switch {
	case to == LevelMastered && next.IsOneShot():
		t.Trigger = "one-shot"
	case to == LevelMastered:
		t.Trigger = "streak"
	case from == LevelNew:
		t.Trigger = "first-attempt"
	default:
		t.Trigger = "lapse"
	}
	return t
}
