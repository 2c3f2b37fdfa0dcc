package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/log"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

func newServer(t *testing.T, env string) *Server {
	t.Helper()
	s, err := New(&Config{Host: "127.0.0.1", Port: 0, Env: env, MaxSessions: 3, MaxWorkInfos: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Router().GET("/api/ping", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("pong ", 200))
	})
	return s
}

func TestNew_WiresTaskStore(t *testing.T) {
	s := newServer(t, "development")
	defer s.Shutdown(context.Background())

	stats := s.Core().Stats()
	if stats.SessionCapacity != 3 || stats.WorkCapacity != 2 {
		t.Errorf("capacities not passed through: %+v", stats)
	}
	if s.Core().Notifications() != s.Notifications() {
		t.Error("core and server should share one notifications service")
	}
}

func TestCORS_DevelopmentOnly(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"development", "http://localhost:3000"},
		{"production", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			s := newServer(t, tt.env)
			defer s.Shutdown(context.Background())

			req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGzip_CompressesResponses(t *testing.T) {
	s := newServer(t, "development")
	defer s.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("expected gzip encoding, got headers %v", w.Header())
	}
}

func TestShutdown_ClosesSubscribers(t *testing.T) {
	s := newServer(t, "development")
	events, _ := s.Notifications().Subscribe()

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if _, ok := <-events; ok {
		t.Error("subscriber channel should be closed")
	}
	if s.ShutdownContext().Err() == nil {
		t.Error("shutdown context should be cancelled")
	}
}
