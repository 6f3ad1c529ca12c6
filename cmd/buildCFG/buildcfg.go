package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type MinioConfig struct {
	Enabled        bool
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

type PublishConfig struct {
	VerifyDelay time.Duration
}

type AlertsConfig struct {
	From      string
	Password  string
	Host      string
	Port      string
	Recipient string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, falling back to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("db.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("db.master_dsn is required")
	}
	slaveDSNs := cfg.GetStringSlice("db.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("db.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("db.conn_max_lifetime_seconds")) * time.Second,
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("DB config built")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "verteiler.verify.delayed"
	}
	if rc.Queue == "" {
		rc.Queue = "verteiler.verify"
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("Rabbit config built")
	return rc, nil
}

func BuildMinioConfig(cfg *config.Config) MinioConfig {
	return MinioConfig{
		Enabled:        cfg.GetBool("minio.enabled"),
		Endpoint:       cfg.GetString("minio.endpoint"),
		PublicEndpoint: cfg.GetString("minio.public_endpoint"),
		AccessKey:      cfg.GetString("minio.access_key"),
		SecretKey:      cfg.GetString("minio.secret_key"),
		Bucket:         cfg.GetString("minio.bucket"),
		UseSSL:         cfg.GetBool("minio.use_ssl"),
	}
}

func BuildPublishConfig(cfg *config.Config) PublishConfig {
	delay := cfg.GetInt("publish.verify_delay_seconds")
	if delay <= 0 {
		delay = 300
	}
	return PublishConfig{VerifyDelay: time.Duration(delay) * time.Second}
}

func BuildAlertsConfig(cfg *config.Config) AlertsConfig {
	return AlertsConfig{
		From:      cfg.GetString("alerts.from"),
		Password:  cfg.GetString("alerts.password"),
		Host:      cfg.GetString("alerts.smtp_host"),
		Port:      cfg.GetString("alerts.smtp_port"),
		Recipient: cfg.GetString("alerts.recipient"),
	}
}
