package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"botpanel/internal/broadcast"
	"botpanel/internal/config"
	"botpanel/internal/events"
	"botpanel/internal/logging"
	"botpanel/internal/repository"
	"botpanel/internal/telegram"
)

// The worker is the self-hosted alternative to the HTTP trigger: a cron
// schedule invokes the engine in-process. SkipIfStillRunning preserves the
// engine's assumption that ticks never overlap.
func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logging.New("info", true)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.New(cfg.LogLevel, cfg.IsDevelopment())

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Msg("connected to database")

	transport, err := telegram.New(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram client")
	}

	var tickEvents broadcast.Events
	if cfg.EventsEnabled() {
		conn, err := events.NewConnection(cfg.GetRabbitMQURL(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer conn.Close()

		publisher, err := events.NewPublisher(conn, cfg.RabbitMQ.Queue, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create tick event publisher")
		}
		tickEvents = publisher
	}

	engine := broadcast.NewEngine(
		repository.NewCampaignRepository(db),
		repository.NewRecipientRepository(db),
		transport,
		tickEvents,
		broadcast.Config{
			BatchSize: cfg.Broadcast.BatchSize,
			SendDelay: cfg.Broadcast.SendDelay,
		},
		log,
	)

	cronLog := cronLogger{log: log}
	scheduler := cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	// Ticks run on a background context: a tick is bounded work and should
	// reach its checkpoint write even while the process is shutting down.
	scheduler.Schedule(cron.Every(cfg.Broadcast.TickInterval), cron.FuncJob(func() {
		if _, err := engine.Tick(context.Background()); err != nil {
			log.Error().Err(err).Msg("broadcast tick failed")
		}
	}))

	scheduler.Start()
	log.Info().Dur("interval", cfg.Broadcast.TickInterval).Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	<-scheduler.Stop().Done()
	log.Info().Msg("worker stopped")
}

// cronLogger adapts zerolog to the cron.Logger interface
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
