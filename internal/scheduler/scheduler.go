package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-assistant/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	runTimeout      = 30 * time.Second
)

// Asker answers one free-text weather question.
type Asker interface {
	Ask(ctx context.Context, text string) weather.Answer
}

// AskFunc adapts a function to Asker.
type AskFunc func(ctx context.Context, text string) weather.Answer

func (f AskFunc) Ask(ctx context.Context, text string) weather.Answer { return f(ctx, text) }

// Scheduler periodically re-asks a fixed set of queries and prints each
// answer.
type Scheduler struct {
	scheduler *gocron.Scheduler
	asker     Asker
	queries   []string
	interval  time.Duration
	out       io.Writer

	mu sync.Mutex // guards out
}

// New creates a new Scheduler.
func New(queries []string, interval time.Duration, asker Asker, out io.Writer) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		asker:     asker,
		queries:   queries,
		interval:  interval,
		out:       out,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.queries) == 0 {
		log.Warn().Msg("scheduler: no queries configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		log.Debug().Int("queries", len(s.queries)).Msg("scheduler: running watch job")
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce asks every query concurrently and prints the answers in query
// order.
func (s *Scheduler) RunOnce(ctx context.Context) []weather.Answer {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	answers := make([]weather.Answer, len(s.queries))

	var wg sync.WaitGroup
	for i, q := range s.queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			answers[i] = s.asker.Ask(ctx, q)
		}(i, q)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range answers {
		at := a.At
		if at.IsZero() {
			at = time.Now()
		}
		fmt.Fprintf(s.out, "[%s] %s\n%s\n\n", at.Local().Format("2006-01-02 15:04:05"), s.queries[i], a.Text)
	}
	return answers
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
