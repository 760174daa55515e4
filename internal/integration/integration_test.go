package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/7h3v01c3/PhishBait/internal/app"
	"github.com/7h3v01c3/PhishBait/internal/domain"
	"github.com/7h3v01c3/PhishBait/internal/engine"
	pgloader "github.com/7h3v01c3/PhishBait/internal/infra/postgres"
	pgmigrations "github.com/7h3v01c3/PhishBait/internal/infra/postgres/migrations"
	infraredis "github.com/7h3v01c3/PhishBait/internal/infra/redis"
)

func TestQuizRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedContentPack(t, ctx, pgURL, samplePack())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewContentLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	content := infraredis.NewContentRepository(redisClient, loader, 5*time.Minute)
	// Short dwell so a completed run only needs a couple of ticks.
	sessions := infraredis.NewSessionStore(redisClient, engine.Options{FeedbackSeconds: 1}, 5*time.Minute)
	missed := infraredis.NewMissedStore(redisClient)
	service := app.NewQuizService(sessions, content, missed, "default", 20, zerolog.Nop())

	const sessionID = "it-session"
	snap, err := service.Start(ctx, sessionID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Phase != engine.PhaseActive {
		t.Fatalf("expected active phase, got %s", snap.Phase)
	}
	if snap.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", snap.TotalQuestions)
	}

	// Answer the first question wrong and the second right, ticking through
	// the feedback dwell after each.
	for i := 0; i < 2; i++ {
		snap, err = service.Answer(ctx, sessionID, wrongOrRight(snap, i == 1))
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		for snap.Phase == engine.PhaseActive && snap.FeedbackVisible {
			snap, err = service.Tick(ctx, sessionID)
			if err != nil {
				t.Fatalf("tick: %v", err)
			}
		}
	}

	if snap.Phase != engine.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", snap.Phase)
	}
	if snap.Result == nil {
		t.Fatalf("expected a result summary")
	}
	if snap.Result.CorrectCount != 1 || snap.Result.MissedCount != 1 {
		t.Fatalf("expected 1 correct / 1 missed, got %+v", snap.Result)
	}

	record, err := service.LastMissed(ctx)
	if err != nil {
		t.Fatalf("last missed: %v", err)
	}
	if len(record) != 1 {
		t.Fatalf("expected one persisted missed question, got %d", len(record))
	}

	// The pack should now be cached in Redis.
	if n, err := redisClient.Exists(ctx, "phishbait:content:default").Result(); err != nil || n != 1 {
		t.Fatalf("expected cached content pack, got n=%d err=%v", n, err)
	}
}

// wrongOrRight picks the correct option when right is true and a guaranteed
// wrong one otherwise.
func wrongOrRight(snap engine.Snapshot, right bool) int {
	if snap.Question == nil {
		return 0
	}
	if right {
		return snap.Question.CorrectAnswer
	}
	return (snap.Question.CorrectAnswer + 1) % len(snap.Question.Options)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "phish", "POSTGRES_PASSWORD": "phishpass", "POSTGRES_DB": "phishdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://phish:phishpass@%s:%s/phishdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedContentPack(t *testing.T, ctx context.Context, dsn string, pack domain.ContentPack) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal pack: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO content_packs (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, pack.ID, string(data)); err != nil {
		t.Fatalf("insert pack: %v", err)
	}
}

func samplePack() domain.ContentPack {
	return domain.ContentPack{
		ID: "default",
		Questions: []domain.QuestionRecord{
			{
				Text:    "An email from your bank asks you to verify your password. What do you do?",
				Options: []string{"Reply with the password", "Contact the bank through its official site"},
				Correct: 1,
				Weight:  5,
			},
			{
				Text:    "A text message offers a prize for clicking a link. What do you do?",
				Options: []string{"Click the link", "Delete the message"},
				Correct: 1,
				Weight:  5,
			},
		},
		Rankings: domain.Rankings{Tiers: []domain.RankingTier{
			{ID: "novice", MinPercent: 0, Titles: []string{"Getting Started"}},
			{ID: "pro", MinPercent: 90, Titles: []string{"Phish Spotter"}},
		}},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
