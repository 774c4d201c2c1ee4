package mqtt

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// Topic Builder Tests
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dispatch event", topics.DispatchEvent("VM-0042"), "vendhub/dispatch/VM-0042"},
		{"stock alert", topics.StockAlert("1000000021"), "vendhub/stock/alert/1000000021"},
		{"system status", topics.SystemStatus(), "vendhub/system/status"},
		{"all dispatch events", topics.AllDispatchEvents(), "vendhub/dispatch/+"},
		{"all stock alerts", topics.AllStockAlerts(), "vendhub/stock/alert/+"},
		{"all topics", topics.AllTopics(), "vendhub/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := &Client{}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Publish("vendhub/dispatch/d1", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}

	huge := []byte(strings.Repeat("a", maxPayloadSize+1))
	if err := client.Publish("vendhub/dispatch/d1", huge, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload error = %v, want ErrPublishFailed", err)
	}

	if err := client.Publish("vendhub/dispatch/d1", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected publish error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

// =============================================================================
// Payload Builder Tests
// =============================================================================

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("vendhub-1")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"vendhub-1"`) {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("vendhub-1")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}
