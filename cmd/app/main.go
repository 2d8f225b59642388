package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"trading_go/internal/app"
	"trading_go/internal/infra"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", infra.DefaultConfigPath, "path to the YAML configuration")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 2. Pprof Server (for performance profiling)
	if addr := bootstrap.Config.Server.PprofAddr; addr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx); err != nil {
		slog.Error("❌ Server stopped with error", slog.Any("error", err))
		stop()
		bootstrap.Close()
		os.Exit(1)
	}
}
