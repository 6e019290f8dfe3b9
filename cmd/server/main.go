package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"podscribe/internal/ai"
	"podscribe/internal/config"
	"podscribe/internal/control"
	"podscribe/internal/db"
	"podscribe/internal/handlers"
	"podscribe/internal/logger"
	"podscribe/internal/middleware"
	"podscribe/internal/weekly"
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

	llm := ai.NewChatClient(cfg.LLMURL, cfg.LLMKey, cfg.LLMModel)
	plane := control.New(store, client, inspector, log)
	weeklyAgg := weekly.New(store, llm, cfg, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewRateLimiterMiddleware(rate.Limit(5), 10).Middleware)

	handlers.NewAdmin(store, plane, weeklyAgg, log).Register(router)

	log.WithField("commit", CommitSHA).WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
