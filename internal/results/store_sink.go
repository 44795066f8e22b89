package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillgenie/skillgenie/internal/store"
)

// StoreSink saves attempts to the attempt log. Recording the same session
// twice is not an error; the first record wins.
type StoreSink struct {
	repo store.AttemptRepo
}

// NewStoreSink creates a StoreSink backed by repo.
func NewStoreSink(repo store.AttemptRepo) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Record(ctx context.Context, a Attempt) error {
	if a.Result == nil {
		return errors.New("record attempt: missing result")
	}
	_, err := s.repo.SaveAttempt(ctx, a.AttemptData())
	if errors.Is(err, store.ErrDuplicateAttempt) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}
