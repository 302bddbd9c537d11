package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/himanishpuri/LyricIndex/internal/config"
	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
)

var (
	port           int
	allowedOrigins string
	watchLibrary   bool
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&watchLibrary, "watch", true, "Reindex when files in the library change")
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []lyricindex.Option{
		lyricindex.WithLogger(log),
		lyricindex.WithChords(cfg.Chords),
		lyricindex.WithMaxResults(cfg.MaxResults),
		lyricindex.WithWatchDebounce(cfg.WatchDebounce),
	}
	if cfg.Workers > 0 {
		opts = append(opts, lyricindex.WithParseWorkers(cfg.Workers))
	}
	library, err := lyricindex.Open(ctx, cfg.Library, opts...)
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}
	defer library.Close()

	if watchLibrary {
		go func() {
			if err := library.Watch(ctx); err != nil {
				log.Errorf("Watcher stopped: %v", err)
			}
		}()
	}

	server := NewServer(library, &ServerConfig{
		Port:           port,
		AllowedOrigins: origins,
	})

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Infof("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Shutdown: %v", err)
		}
	}
}
