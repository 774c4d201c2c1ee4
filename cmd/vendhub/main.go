// VendHub Core - Vending Configuration Backend
//
// This is the main entry point for the VendHub Core application. VendHub
// sits between operator tooling and the internal device-command platform:
// it normalizes per-family planogram payloads into the platform's batch
// config contract, dispatches them, classifies the outcome, and keeps an
// auditable stock-change history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	_ "github.com/vendhub/vendhub-core/migrations"

	"github.com/vendhub/vendhub-core/internal/api"
	"github.com/vendhub/vendhub-core/internal/audit"
	"github.com/vendhub/vendhub-core/internal/infrastructure/config"
	"github.com/vendhub/vendhub-core/internal/infrastructure/database"
	"github.com/vendhub/vendhub-core/internal/infrastructure/influxdb"
	"github.com/vendhub/vendhub-core/internal/infrastructure/logging"
	"github.com/vendhub/vendhub-core/internal/infrastructure/mqtt"
	"github.com/vendhub/vendhub-core/internal/notify"
	"github.com/vendhub/vendhub-core/internal/planogram"
	"github.com/vendhub/vendhub-core/internal/platform"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting VendHub Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database for the local audit trail
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Platform client and dispatcher
	platformClient := platform.New(cfg.Platform, log)
	dispatcher := planogram.NewDispatcher(platformClient, log)
	log.Info("platform client initialised",
		"base_url", cfg.Platform.BaseURL,
		"batch_timeout_s", cfg.Platform.BatchTimeout,
	)

	// Connect to MQTT broker (optional dispatch event stream)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		dispatcher.AddObserver(dispatchEventPublisher(mqttClient, log))
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional stock/dispatch time series)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		dispatcher.AddObserver(planogram.ObserverFunc(
			func(_ context.Context, _ string, batch planogram.ConfigBatch, res planogram.DispatchResult) {
				influxClient.WriteDispatchOutcome(batch.DeviceID, string(res.Status), res.Code, len(batch.Payload))
			}))
	} else {
		log.Info("InfluxDB disabled")
	}

	// Telegram notifier for low-stock alerts
	notifier := notify.NewTelegram(cfg.Telegram, log)

	// API server
	deps := api.Deps{
		Config:     cfg.API,
		Stock:      cfg.Stock,
		Logger:     log,
		Platform:   platformClient,
		Dispatcher: dispatcher,
		Audit:      auditRepo,
		Notifier:   notifier,
		Version:    version,
	}
	if influxClient != nil {
		deps.StockTS = influxClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("VendHub Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses VENDHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VENDHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// dispatchEventPublisher builds the observer that mirrors every classified
// dispatch outcome onto the MQTT event stream. Publishing is best-effort:
// a broker outage must never affect the dispatch response.
func dispatchEventPublisher(client *mqtt.Client, log *logging.Logger) planogram.Observer {
	topics := mqtt.Topics{}
	return planogram.ObserverFunc(func(_ context.Context, applicationID string, batch planogram.ConfigBatch, res planogram.DispatchResult) {
		payload, err := json.Marshal(map[string]any{
			"device_id":      batch.DeviceID,
			"application_id": applicationID,
			"status":         string(res.Status),
			"result_code":    res.Code,
			"command_id":     res.CommandID,
			"entries":        len(batch.Payload),
			"timestamp":      time.Now().UnixMilli(),
		})
		if err != nil {
			return
		}
		if pubErr := client.PublishEvent(topics.DispatchEvent(batch.DeviceID), payload); pubErr != nil {
			log.Warn("dispatch event publish failed",
				"device_id", batch.DeviceID,
				"error", pubErr)
		}
	})
}

// healthCheck verifies all infrastructure connections are healthy.
// MQTT and InfluxDB are optional and skipped when nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
