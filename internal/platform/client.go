package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/infrastructure/config"
	"github.com/vendhub/vendhub-core/internal/infrastructure/logging"
	"github.com/vendhub/vendhub-core/internal/planogram"
)

// Authentication headers the platform expects on every call.
const (
	headerToken         = "X-Internal-Api-Token"
	headerApplicationID = "X-Application-Id"
)

// Client talks to the device-command platform API. Safe for concurrent
// use; one Client serves all applications, with the application ID passed
// per call.
type Client struct {
	baseURL      string
	token        string
	readTimeout  time.Duration
	batchTimeout time.Duration
	httpClient   *http.Client
	logger       *logging.Logger
}

func New(cfg config.PlatformConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		token:        cfg.Token,
		readTimeout:  cfg.GetReadTimeout(),
		batchTimeout: cfg.GetBatchTimeout(),
		// Per-call deadlines come from the request context; the client
		// itself carries no timeout so batch calls can outlive reads.
		httpClient: &http.Client{},
		logger:     logger.With("component", "platform"),
	}
}

// SendConfigBatch dispatches a batch config command. This is the long
// call: the platform may hold the request open until the device
// acknowledges, so it runs under the batch timeout. Satisfies the
// planogram dispatcher's Sender contract.
func (c *Client) SendConfigBatch(ctx context.Context, applicationID string, batch planogram.ConfigBatch) (int, map[string]any, error) {
	return c.post(ctx, "/send/config/batch", applicationID, batch, c.batchTimeout)
}

// SendConfig dispatches a single (non-batch) config command.
func (c *Client) SendConfig(ctx context.Context, applicationID string, body any) (int, map[string]any, error) {
	return c.post(ctx, "/send/config", applicationID, body, c.batchTimeout)
}

// SendCommand dispatches a raw device command.
func (c *Client) SendCommand(ctx context.Context, applicationID string, body any) (int, map[string]any, error) {
	return c.post(ctx, "/send/command", applicationID, body, c.batchTimeout)
}

// LatestSensorData reads the latest reported value of matching sensors.
// Query keys mirror the platform's filter parameters: device_id, sensor,
// configtype, param, datatype.
func (c *Client) LatestSensorData(ctx context.Context, applicationID string, query url.Values) (int, map[string]any, error) {
	return c.get(ctx, "/device/sensor/list/data/latest", applicationID, query)
}

// DeviceSensors reads the latest sensor list for one device.
func (c *Client) DeviceSensors(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error) {
	return c.LatestSensorData(ctx, applicationID, url.Values{"device_id": {deviceID}})
}

// FlattenedSensors reads the flattened sensor tree for one device; ice
// machines report their planogram this way.
func (c *Client) FlattenedSensors(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error) {
	return c.get(ctx, "/device/sensors/read/flatten", applicationID, url.Values{"id": {deviceID}})
}

// StockLevels reads every numeric stock value across the application's
// fleet, for low-stock scans.
func (c *Client) StockLevels(ctx context.Context, applicationID string) (int, map[string]any, error) {
	return c.LatestSensorData(ctx, applicationID, url.Values{
		"configtype": {"data"},
		"param":      {"stock"},
		"datatype":   {"number"},
	})
}

// RFIDRules reads the configured RFID access rules for one device.
func (c *Client) RFIDRules(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error) {
	return c.LatestSensorData(ctx, applicationID, url.Values{
		"device_id":  {deviceID},
		"sensor":     {"user"},
		"configtype": {"config"},
		"param":      {"rule"},
	})
}

// RFIDStates reads the live card-state values for one device.
func (c *Client) RFIDStates(ctx context.Context, applicationID, deviceID string) (int, map[string]any, error) {
	return c.LatestSensorData(ctx, applicationID, url.Values{
		"device_id":  {deviceID},
		"sensor":     {"user"},
		"configtype": {"data"},
		"param":      {"state"},
	})
}

// ListDevices reads the application's device fleet, optionally filtered
// by tags.
func (c *Client) ListDevices(ctx context.Context, applicationID string, tags []string) (int, map[string]any, error) {
	query := url.Values{}
	for _, tag := range tags {
		query.Add("tag", tag)
	}
	return c.get(ctx, "/device/list", applicationID, query)
}

func (c *Client) post(ctx context.Context, path, applicationID string, body any, timeout time.Duration) (int, map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: encode body: %v", ErrRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return c.do(req, applicationID)
}

func (c *Client) get(ctx context.Context, path, applicationID string, query url.Values) (int, map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	return c.do(req, applicationID)
}

func (c *Client) do(req *http.Request, applicationID string) (int, map[string]any, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerToken, c.token)
	req.Header.Set(headerApplicationID, applicationID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("platform request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err)
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %v", ErrBadResponse, err)
	}

	var body map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
	}

	c.logger.Debug("platform request complete",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp.StatusCode, body, nil
}
