package main

import (
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"podscribe/internal/config"
	"podscribe/internal/logger"
	"podscribe/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	pollTask, err := tasks.NewPollPodcastsTask()
	if err != nil {
		log.WithError(err).Fatal("could not create poll task")
	}
	if _, err := scheduler.Register("@every 1h", pollTask); err != nil {
		log.WithError(err).Fatal("could not register poll task")
	}

	weeklyTask, err := tasks.NewWeeklyAnalysisTask()
	if err != nil {
		log.WithError(err).Fatal("could not create weekly task")
	}
	// Daily refresh; the aggregator's own 24h cache keeps this cheap.
	if _, err := scheduler.Register("0 6 * * *", weeklyTask); err != nil {
		log.WithError(err).Fatal("could not register weekly task")
	}

	log.WithField("commit", CommitSHA).Info("scheduler starting")
	if err := scheduler.Run(); err != nil {
		log.WithError(err).Fatal("could not run scheduler")
	}
}
