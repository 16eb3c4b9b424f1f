package reaper

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/game"
	"github.com/ohadf2015/boggle-new-sub010/internal/ratelimit"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Reaper runs the background sweeps: stale rooms, empty rooms, and aged-out
// rate limiter entries.
type Reaper struct {
	scheduler gocron.Scheduler
}

func Start(cfg *config.Config, registry *game.Registry, gate *ratelimit.Gate) (*Reaper, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			now := time.Now()
			registry.SweepStale(now, cfg.StaleRoomAfter)
			registry.SweepEmpty()
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(func() {
			gate.Sweep(time.Now())
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	util.LogInfo("Started reaper sweeps (room sweep every %v)", cfg.SweepInterval)
	return &Reaper{scheduler: s}, nil
}

func (r *Reaper) Stop() {
	if err := r.scheduler.Shutdown(); err != nil {
		util.LogWarn("Reaper shutdown: %v", err)
	}
}
