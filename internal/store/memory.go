package store

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/i474232898/weather-assistant/internal/weather"
)

var (
	// ErrNotFound is returned when the history is empty.
	ErrNotFound = errors.New("no answers recorded")
)

// MemoryStore is a concurrency-safe in-memory log of rendered answers,
// oldest first.
type MemoryStore struct {
	mu sync.RWMutex

	answers []weather.Answer

	// retention configuration
	maxHistory int           // max number of answers kept
	maxAge     time.Duration // optional max age for answers
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Record appends an answer and enforces retention.
func (s *MemoryStore) Record(a weather.Answer) {
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append(s.answers, a)

	if s.maxHistory > 0 && len(s.answers) > s.maxHistory {
		over := len(s.answers) - s.maxHistory
		s.answers = append([]weather.Answer(nil), s.answers[over:]...)
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.answers); i++ {
			if !s.answers[i].At.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.answers = append([]weather.Answer(nil), s.answers[i:]...)
		}
	}
}

// Recent returns up to limit answers, newest first. limit <= 0 returns all.
func (s *MemoryStore) Recent(limit int) []weather.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.answers)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]weather.Answer, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.answers[i])
	}
	return out
}

// Latest returns the most recent answer.
func (s *MemoryStore) Latest() (weather.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.answers) == 0 {
		return weather.Answer{}, ErrNotFound
	}
	return s.answers[len(s.answers)-1], nil
}

// Range returns the answers recorded between from and to (inclusive), oldest
// first.
func (s *MemoryStore) Range(from, to time.Time) []weather.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Answer
	for _, a := range s.answers {
		if !a.At.Before(from) && !a.At.After(to) {
			result = append(result, a)
		}
	}
	return result
}
