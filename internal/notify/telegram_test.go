package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/infrastructure/config"
)

func testTelegram(t *testing.T, handler http.HandlerFunc) *Telegram {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tg := NewTelegram(config.TelegramConfig{
		Applications: map[string]config.TelegramApp{
			"app-1": {BotToken: "bot-token-1", ChannelID: "1664430239"},
		},
	}, nil)
	tg.baseURL = srv.URL
	return tg
}

func TestSendText(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	tg := testTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true}`))
	})

	if err := tg.SendText(context.Background(), "app-1", "<b>low stock</b>"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if gotPath != "/botbot-token-1/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["chat_id"] != "-1001664430239" {
		t.Errorf("chat_id = %v", gotBody["chat_id"])
	}
	if gotBody["parse_mode"] != "html" {
		t.Errorf("parse_mode = %v", gotBody["parse_mode"])
	}
}

func TestSendTextUnknownApplication(t *testing.T) {
	tg := testTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for unknown applications")
	})

	err := tg.SendText(context.Background(), "app-unknown", "hello")
	if !errors.Is(err, ErrUnknownApplication) {
		t.Errorf("error = %v, want ErrUnknownApplication", err)
	}
}

func TestSendTextAPIRejection(t *testing.T) {
	tg := testTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	err := tg.SendText(context.Background(), "app-1", "hello")
	if !errors.Is(err, ErrSendFailed) {
		t.Errorf("error = %v, want ErrSendFailed", err)
	}
}
