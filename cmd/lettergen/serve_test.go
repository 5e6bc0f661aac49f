package main

// Notes:
// - newServer: we check that settings reach the server by calling its
//   handler; routes themselves are covered in internal/server.
// - runServe: a cancelled context shuts the server down right after it binds.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(map[string]string{"LETTERGEN_WORKERS": "2"})
	flags := &serveFlags{addr: "127.0.0.1:0", maxUploadMB: 4, common: commonFlags{quiet: true}}

	srv, pool, err := newServer(flags, env)
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	defer pool.Close()

	if pool.Size() != 2 {
		t.Errorf("pool size = %d, want 2 from LETTERGEN_WORKERS", pool.Size())
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body: %v", err)
	}
}

func TestNewServer_WorkersFlagWins(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(map[string]string{"LETTERGEN_WORKERS": "2"})
	flags := &serveFlags{workers: 3, common: commonFlags{quiet: true}}

	_, pool, err := newServer(flags, env)
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	defer pool.Close()

	if pool.Size() != 3 {
		t.Errorf("pool size = %d, want 3", pool.Size())
	}
}

func TestNewServer_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    *serveFlags
		wantCode int
	}{
		{"upload cap too large", &serveFlags{maxUploadMB: 5000}, ExitUsage},
		{"bad engine", &serveFlags{render: renderFlags{engine: "latex"}}, ExitUsage},
		{"unknown letter", &serveFlags{render: renderFlags{letter: "nope"}}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _, _ := testEnv(nil)
			_, _, err := newServer(tt.flags, env)
			if err == nil {
				t.Fatal("newServer() error = nil")
			}
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestRunServe_Shutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env, _, stderr := testEnv(nil)
	if err := runServe(ctx, []string{"--addr", "127.0.0.1:0", "-q"}, env); err != nil {
		t.Errorf("runServe() error = %v; stderr: %s", err, stderr)
	}
}

func TestRunServe_ListenError(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(nil)
	err := runServe(context.Background(), []string{"--addr", "256.0.0.1:bad", "-q"}, env)
	if got := exitCodeFor(err); got != ExitIO {
		t.Errorf("exit code = %d, want %d (%v)", got, ExitIO, err)
	}
}
