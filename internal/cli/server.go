package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/7h3v01c3/PhishBait/internal/app"
	"github.com/7h3v01c3/PhishBait/internal/config"
	"github.com/7h3v01c3/PhishBait/internal/engine"
	filecontent "github.com/7h3v01c3/PhishBait/internal/infra/file"
	"github.com/7h3v01c3/PhishBait/internal/infra/memory"
	pgcontent "github.com/7h3v01c3/PhishBait/internal/infra/postgres"
	redisinfra "github.com/7h3v01c3/PhishBait/internal/infra/redis"
	"github.com/7h3v01c3/PhishBait/internal/logger"
	transport "github.com/7h3v01c3/PhishBait/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func engineOptions(cfg config.Config) engine.Options {
	return engine.Options{
		TimeLimit:        cfg.Quiz.TimeLimit,
		LowTimeThreshold: cfg.Quiz.LowTimeThreshold,
		BonusSeconds:     cfg.Quiz.BonusSeconds,
		GraceSeconds:     cfg.Quiz.GraceSeconds,
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	contentDir := cfg.Content.Dir
	if contentDir == "" {
		contentDir = "data"
	}
	var loader memory.ContentLoader = filecontent.NewContentLoader(contentDir)
	if pool != nil {
		loader = pgcontent.NewContentLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var contentRepo app.ContentRepository
	if redisClient != nil {
		contentRepo = redisinfra.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contentRepo = memory.NewContentRepository(loader, contentTTL)
	}

	opts := engineOptions(cfg)
	var sessions app.SessionRepository
	var missed app.MissedRecordStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, opts, redisTTL)
		missed = redisinfra.NewMissedStore(redisClient)
	} else {
		sessions = memory.NewSessionStore(opts)
		missed = memory.NewMissedStore()
	}

	service := app.NewQuizService(sessions, contentRepo, missed, cfg.Content.Pack, cfg.Quiz.MaxQuestions, log)
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting phishbait engine")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
