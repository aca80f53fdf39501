package cache

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/video-analitics/catalog/pkg/logger"
)

const DefaultSweepInterval = 2 * time.Minute

// Sweeper periodically evicts expired entries from a Store.
type Sweeper struct {
	store     *Store
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewSweeper(store *Store, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		store:     store,
		interval:  interval,
		scheduler: s,
	}, nil
}

func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	logger.Log.Info().Dur("interval", s.interval).Msg("cache sweeper started")
	return nil
}

func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Sweeper) sweep() {
	if n := s.store.Sweep(); n > 0 {
		logger.Log.Debug().Int("evicted", n).Int("remaining", s.store.Size()).Msg("cache sweep")
	}
}
