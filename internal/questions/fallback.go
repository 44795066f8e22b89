package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

// FallbackProvider tries each provider in order and returns the first
// quiz produced. Invalid requests are returned immediately since no other
// provider would accept them either.
type FallbackProvider struct {
	providers []Provider

	// OnFallback, if set, is called with each error that caused the next
	// provider to be tried.
	OnFallback func(err error)
}

// NewFallbackProvider creates a FallbackProvider over providers.
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

func (f *FallbackProvider) Quiz(ctx context.Context, req Request) (*Quiz, error) {
	if len(f.providers) == 0 {
		return nil, errors.New("no question providers configured")
	}

	var errs []error
	for i, p := range f.providers {
		q, err := p.Quiz(ctx, req)
		if err == nil {
			return q, nil
		}
		if errors.Is(err, quiz.ErrInvalidInput) || ctx.Err() != nil {
			return nil, err
		}
		errs = append(errs, err)
		if f.OnFallback != nil && i < len(f.providers)-1 {
			f.OnFallback(err)
		}
	}
	return nil, fmt.Errorf("all question providers failed: %w", errors.Join(errs...))
}
