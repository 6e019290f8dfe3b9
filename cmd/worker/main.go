package main

import (
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"podscribe/internal/ai"
	"podscribe/internal/blob"
	"podscribe/internal/config"
	"podscribe/internal/control"
	"podscribe/internal/db"
	"podscribe/internal/feed"
	"podscribe/internal/logger"
	"podscribe/internal/pipeline"
	"podscribe/internal/steps"
	"podscribe/internal/weekly"
	"podscribe/internal/worker"
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

	store, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer store.Close()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redisOpt)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpt)

	blobs := blob.NewFS(cfg.BlobDir)
	stt := ai.NewWhisperClient(cfg.TranscribeURL, cfg.TranscribeKey)
	llm := ai.NewChatClient(cfg.LLMURL, cfg.LLMKey, cfg.LLMModel)
	runner := steps.NewRunner(store, log)

	pipe := pipeline.New(store, blobs, pipeline.NewHTTPFetcher(), stt, llm, runner, cfg, log)
	plane := control.New(store, client, inspector, log)
	weeklyAgg := weekly.New(store, llm, cfg, log)

	taskHandler := worker.NewTaskHandler(store, pipe, plane, weeklyAgg, feed.NewClient(), log)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		// Episode pipelines run concurrently with each other; within one
		// pipeline, chunks stay strictly sequential.
		Concurrency: 4,
		Queues: map[string]int{
			tasks.QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeProcessEpisode, taskHandler.HandleProcessEpisodeTask)
	mux.HandleFunc(tasks.TypePollPodcasts, taskHandler.HandlePollPodcastsTask)
	mux.HandleFunc(tasks.TypeWeeklyAnalysis, taskHandler.HandleWeeklyAnalysisTask)

	log.WithField("commit", CommitSHA).Info("worker starting")
	if err := srv.Run(mux); err != nil {
		log.WithError(err).Fatal("could not run worker")
	}
}
