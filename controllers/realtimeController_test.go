package controllers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// serverConn returns the server side of a fresh websocket connection.
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return <-conns
}

func TestCloseFeedLogsFailedWrite(t *testing.T) {
	var logs bytes.Buffer
	c := &Controller{log: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	conn := serverConn(t)
	conn.Close()
	c.closeFeed(conn, "session", websocket.ClosePolicyViolation, "account disabled")

	if out := logs.String(); !strings.Contains(out, "failed to send close frame") || !strings.Contains(out, "feed=session") {
		t.Fatalf("expected a debug entry for the failed close frame, got %q", out)
	}
}
