package app_test

import (
	"context"
	"errors"
	"strings"

	"delai_travel/internal/domain"
)

// fakeGen scripts text-generation replies. Replies are consumed in order;
// when the script runs out the last entry repeats.
type fakeGen struct {
	replies []string
	err     error
	off     bool
	calls   []domain.CompletionRequest
}

func (f *fakeGen) Enabled() bool { return !f.off }

func (f *fakeGen) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("fakeGen: no scripted reply")
	}
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

// promptContains reports whether any message in any recorded call carries s.
func (f *fakeGen) promptContains(s string) bool {
	for _, c := range f.calls {
		for _, m := range c.Messages {
			if strings.Contains(m.Content, s) {
				return true
			}
		}
	}
	return false
}

// fakeCatalog returns a fixed record set regardless of hint.
type fakeCatalog struct {
	records []domain.HotelRecord
	hints   []string
}

func (f *fakeCatalog) Load(ctx context.Context, cityHint string) []domain.HotelRecord {
	f.hints = append(f.hints, cityHint)
	return f.records
}
