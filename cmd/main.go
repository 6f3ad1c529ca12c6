package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"eventverteiler/cmd/buildCFG"
	"eventverteiler/internal/api/api"
	rabbitReader "eventverteiler/internal/consumerWorker"
	"eventverteiler/internal/evidence"
	"eventverteiler/internal/mailer"
	"eventverteiler/internal/metrics"
	"eventverteiler/internal/oauth"
	"eventverteiler/internal/platform"
	"eventverteiler/internal/publisher"
	"eventverteiler/internal/rabbit"
	"eventverteiler/internal/repo"
	"eventverteiler/internal/service"
	"eventverteiler/internal/verifier"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	port := serverCfg.Port

	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Msgf("failed to connect to DB: %v", err)
	}
	if err := db.Master.Ping(); err != nil {
		log.Fatal().Msgf("DB ping failed: %v", err)
	}
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot get working directory")
	}
	migrationPath := filepath.Join(cwd, "migrations/postgres")
	if err := repository.MigrateUp(migrationPath); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("Migrations applied successfully")

	minioCfg := buildCFG.BuildMinioConfig(cfg)
	var evidenceStore evidence.Store
	if minioCfg.Enabled {
		evidenceStore, err = evidence.NewMinIOStore(
			minioCfg.Endpoint, minioCfg.PublicEndpoint,
			minioCfg.AccessKey, minioCfg.SecretKey,
			minioCfg.Bucket, minioCfg.UseSSL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize evidence storage")
		}
	} else {
		evidenceStore = evidence.NewMemory()
		log.Warn().Msg("MinIO disabled, keeping screenshot evidence in memory")
	}

	configs, err := repository.ListPlatformConfigs(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load platform configs")
	}
	registry := platform.NewRegistry(platform.CredentialsFromConfigs(configs), evidenceStore)
	log.Info().Int("targets", len(registry.Available())).Msg("Platform registry built")

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	promMetrics := metrics.New(prometheus.DefaultRegisterer)
	publishCfg := buildCFG.BuildPublishConfig(cfg)

	pub := publisher.New(repository, repository, registry, &log,
		publisher.WithMetrics(promMetrics),
		publisher.WithAutoVerify(rmq, publishCfg.VerifyDelay),
	)
	ver := verifier.New(repository, registry, evidenceStore, &log, promMetrics)

	alertsCfg := buildCFG.BuildAlertsConfig(cfg)
	alerts := mailer.NewAlerts(alertsCfg.From, alertsCfg.Password, alertsCfg.Host, alertsCfg.Port, alertsCfg.Recipient, &log)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	rabbitReaderer := rabbitReader.NewReader(rmq, ver, alerts)
	go rabbitReaderer.Start(workerCtx)

	states := oauth.NewStateStore()
	exchanger := oauth.NewExchanger(cfg.GetString("oauth.redirect_uri"))

	serviceInstance := service.NewService(repository, pub, ver, registry, states, exchanger, &log)
	app := api.NewRouters(&api.Routers{Service: serviceInstance})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", port)
		if err := app.Run(":" + port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	cancelWorkers()
	rabbitReaderer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if closer, ok := interface{}(app).(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(shutdownCtx); err != nil {
			log.Error().Msgf("Error shutting down server: %v", err)
		}
	}

	log.Info().Msg("Shutdown complete")
}
