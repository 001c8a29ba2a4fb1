package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/daemon"
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/grid"
	"github.com/1broseidon/wtm/internal/hotkeys"
	"github.com/1broseidon/wtm/internal/ipc"
	"github.com/1broseidon/wtm/internal/manager"
	"github.com/1broseidon/wtm/internal/platform"
)

// backendStopTimeout bounds how long shutdown waits for the window system
// loop after the dispatch loop has returned.
const backendStopTimeout = 2 * time.Second

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (profile: %s, margin: %dpx, padding: %dpx)",
		cfg.DefaultProfile(), cfg.Margin, cfg.Padding)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}

	// Connect to display server
	backend, err := platform.NewBackend(logger)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	cache := loadGridCache()
	events := event.NewChannel()

	mgr := manager.New(manager.Options{
		Backend: backend,
		Events:  events,
		Config:  cfg,
		Cache:   cache,
		Logger:  logger,
	})

	reloader := daemon.NewReloader(config.Load, events, logger)

	ipcServer, err := ipc.NewServer(ipc.ServerOptions{
		Status:   mgr,
		Events:   events,
		Reloader: reloader,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// The socket doubles as the single-instance lock.
	hotkeyHandler := hotkeys.NewHandler(backend, events, logger)
	if err := hotkeyHandler.RegisterAll(cfg.Keybinds); err != nil {
		log.Fatalf("Failed to register hotkeys: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %s, shutting down", sig)
		cancel()
	}()

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go reloader.Run(ctx, hupCh)

	backendDone := make(chan error, 1)
	go func() {
		backendDone <- backend.Run(ctx)
	}()

	log.Printf("wtm daemon started successfully (socket: %s)", ipcServer.SocketPath())

	if err := mgr.Run(ctx); err != nil {
		log.Printf("Dispatch loop error: %v", err)
	}
	cancel()

	select {
	case <-backendDone:
	case <-time.After(backendStopTimeout):
		log.Printf("Warning: window system loop did not stop within %s", backendStopTimeout)
	}
	log.Println("wtm daemon stopped")
}

// loadGridCache falls back to an in-memory cache when the file is unusable.
func loadGridCache() *grid.Cache {
	path, err := config.GridCachePath()
	if err == nil {
		var cache *grid.Cache
		if cache, err = grid.LoadCache(path); err == nil {
			return cache
		}
	}
	log.Printf("Warning: grid sizes will not persist: %v", err)
	cache, _ := grid.LoadCache("")
	return cache
}
