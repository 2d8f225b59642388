package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func initBootstrap(t *testing.T, port int) *Bootstrap {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: %d
  mode: "test"
storage:
  dsn: %q
engine:
  dump_file: %q
logging:
  level: "error"
  dir: ""
`, port, filepath.Join(dir, "trading.db"), filepath.Join(dir, "dump.json"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	b := NewBootstrap()
	if err := b.Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBootstrap_Initialize(t *testing.T) {
	b := initBootstrap(t, 5000)

	if b.Engine == nil || b.Router == nil || b.Portfolio == nil || b.Hub == nil {
		t.Fatal("components not wired")
	}
	if len(b.Engine.Instruments()) != 6 {
		t.Errorf("Expected default instruments, got %d", len(b.Engine.Instruments()))
	}
	if b.Config.Server.Mode != "test" {
		t.Errorf("Expected test mode, got %s", b.Config.Server.Mode)
	}
}

func TestBootstrap_InitializeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("portfolio:\n  currency: \"ZZZ\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewBootstrap().Initialize(path); err == nil {
		t.Error("Expected invalid configuration error")
	}
}

func TestBootstrap_RunAndShutdown(t *testing.T) {
	port := freePort(t)
	b := initBootstrap(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(base + "/api/v1/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected 200, got %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	resp, err := http.Post(base+"/api/v1/orders", "application/json",
		strings.NewReader(`{"symbol":"RELIANCE","orderType":"BUY","orderStyle":"MARKET","quantity":10}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBootstrap_RunRequiresInitialize(t *testing.T) {
	if err := NewBootstrap().Run(context.Background()); err == nil {
		t.Error("Expected error when not initialized")
	}
}
