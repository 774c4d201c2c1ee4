package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vendhub/vendhub-core/internal/audit"
	"github.com/vendhub/vendhub-core/internal/infrastructure/config"
	"github.com/vendhub/vendhub-core/internal/infrastructure/logging"
	"github.com/vendhub/vendhub-core/internal/planogram"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Dispatcher sends normalized config batches to the device-command
// platform and classifies the outcomes.
type Dispatcher interface {
	Dispatch(ctx context.Context, applicationID string, batch planogram.ConfigBatch) (planogram.DispatchResult, error)
	DispatchGrouped(ctx context.Context, applicationID, deviceID string, entries []planogram.ConfigEntry, waitResult bool) (planogram.GroupedResult, error)
}

// PlatformReader covers the read and pass-through operations the handlers
// need from the platform client.
type PlatformReader interface {
	SendConfig(ctx context.Context, applicationID string, body any) (int, map[string]any, error)
	SendCommand(ctx context.Context, applicationID string, body any) (int, map[string]any, error)
	DeviceSensors(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error)
	FlattenedSensors(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error)
	StockLevels(ctx context.Context, applicationID string) (int, map[string]any, error)
	RFIDRules(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error)
	RFIDStates(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error)
	ListDevices(ctx context.Context, applicationID string, tags []string) (int, map[string]any, error)
	LatestSensorData(ctx context.Context, applicationID string, query url.Values) (int, map[string]any, error)
}

// Notifier sends operator notifications for an application.
type Notifier interface {
	SendText(ctx context.Context, applicationID, text string) error
}

// StockWriter records reconciled stock deltas in the time-series store.
type StockWriter interface {
	WriteStockChange(deviceID, slot string, start, end, difference int, timestamp time.Time)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Stock      config.StockConfig
	Logger     *logging.Logger
	Platform   PlatformReader
	Dispatcher Dispatcher
	Audit      audit.Repository // optional: dispatch audit trail
	Notifier   Notifier         // optional: low-stock alerts
	StockTS    StockWriter      // optional: stock-change time series
	Version    string
}

// Server is the HTTP API server for VendHub Core.
type Server struct {
	cfg        config.APIConfig
	stockCfg   config.StockConfig
	logger     *logging.Logger
	platform   PlatformReader
	dispatcher Dispatcher
	audit      audit.Repository
	notifier   Notifier
	stockTS    StockWriter
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Platform == nil {
		return nil, fmt.Errorf("platform client is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	return &Server{
		cfg:        deps.Config,
		stockCfg:   deps.Stock,
		logger:     deps.Logger,
		platform:   deps.Platform,
		dispatcher: deps.Dispatcher,
		audit:      deps.Audit,
		notifier:   deps.Notifier,
		stockTS:    deps.StockTS,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// recordAudit writes a dispatch audit entry, logging rather than failing
// the request when the local trail is unavailable.
func (s *Server) recordAudit(ctx context.Context, log *audit.Log) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Warn("audit write failed",
			"action", log.Action,
			"device_id", log.DeviceID,
			"error", err)
	}
}
