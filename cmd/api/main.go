package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"botpanel/internal/broadcast"
	"botpanel/internal/config"
	"botpanel/internal/events"
	"botpanel/internal/handler"
	"botpanel/internal/logging"
	"botpanel/internal/middleware"
	"botpanel/internal/repository"
	"botpanel/internal/service"
	"botpanel/internal/telegram"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	ctx := context.Background()

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

	campaignRepo := repository.NewCampaignRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)

	var tickEvents broadcast.Events
	var queueURL string
	if cfg.EventsEnabled() {
		queueURL = cfg.GetRabbitMQURL()
		conn, err := events.NewConnection(queueURL, log)
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
		campaignRepo,
		recipientRepo,
		transport,
		tickEvents,
		broadcast.Config{
			BatchSize: cfg.Broadcast.BatchSize,
			SendDelay: cfg.Broadcast.SendDelay,
		},
		log,
	)

	campaignSvc := service.NewCampaignService(campaignRepo, recipientRepo)
	healthSvc := service.NewHealthService(db, queueURL)

	router := newRouter(cfg, log, engine, campaignSvc, healthSvc)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a tick can pace through a full window
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("api server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newRouter(
	cfg *config.Config,
	log zerolog.Logger,
	engine *broadcast.Engine,
	campaignSvc *service.CampaignService,
	healthSvc *service.HealthChecker,
) *mux.Router {
	broadcastHandler := handler.NewBroadcastHandler(engine, log)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, log)
	healthHandler := handler.NewHealthHandler(healthSvc)

	router := mux.NewRouter()
	router.Use(middleware.Recovery(log))

	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	trigger := router.PathPrefix("/api/broadcast").Subrouter()
	trigger.Use(middleware.RequireTriggerSecret(cfg.Broadcast.TriggerSecret))
	trigger.HandleFunc("/tick", broadcastHandler.Tick).Methods("POST")

	admin := router.PathPrefix("/api").Subrouter()
	admin.Use(middleware.RequireBearerToken(cfg.Server.AdminToken))
	admin.HandleFunc("/campaigns", campaignHandler.Create).Methods("POST")
	admin.HandleFunc("/campaigns", campaignHandler.List).Methods("GET")
	admin.HandleFunc("/campaigns/{id}", campaignHandler.GetByID).Methods("GET")
	admin.HandleFunc("/campaigns/{id}", campaignHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/recipients", campaignHandler.ListRecipients).Methods("GET")

	return router
}
