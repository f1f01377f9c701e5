package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/a-h/templ"
	flag "github.com/spf13/pflag"
	"github.com/todo-api/service/internal/app/todo"
	"github.com/todo-api/service/internal/platform/config"
	"github.com/todo-api/service/internal/platform/dbpool"
	"github.com/todo-api/service/internal/platform/env"
	"github.com/todo-api/service/internal/platform/metrics"
	"github.com/todo-api/service/internal/platform/natsutil"
	"github.com/todo-api/service/services/frontend"
)

const version = "1.0.0"

func main() {
	host := flag.String("host", env.DefaultHost, "Host to bind to")
	port := flag.Int("port", env.DefaultPort, "Port to bind to")
	debug := flag.Bool("debug", false, "Enable per-request logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Optional JSONC config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("todo-api " + version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if flag.CommandLine.Changed("host") {
		cfg.Host = *host
	}
	if flag.CommandLine.Changed("port") {
		cfg.Port = *port
	}
	if flag.CommandLine.Changed("debug") {
		cfg.Debug = *debug
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.New(runCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := todo.NewRepository(pool)
	if err := waitForSchema(runCtx, repo, 30*time.Second); err != nil {
		log.Fatal(err)
	}

	var events *todo.EventPublisher
	if cfg.NATSURL != "" {
		client, err := natsutil.ConnectJetStreamWithRetry(cfg.NATSURL, env.Duration("NATS_CONNECT_TIMEOUT", 20*time.Second))
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		publisher := natsutil.JetStreamPublisher{JS: client.JS}
		events = todo.NewEventPublisher(publisher.Publish)
	}

	service := todo.NewService(repo, events)
	handler := todo.NewHandler(service, version, cfg.AllowedOrigin, cfg.Debug)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.DefaultHandler())
	mux.Handle("/ui", templ.Handler(frontend.TodosPage()))
	mux.Handle("/static/", http.StripPrefix("/static/", frontend.StaticHandler()))
	mux.Handle("/", handler.Router())

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("Starting Todo API server on %s\n", addr)
	if cfg.Debug {
		fmt.Println("Debug mode enabled")
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatal(err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("todo-api graceful shutdown failed: %v", err)
	}
}

func waitForSchema(ctx context.Context, repo *todo.Repository, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = repo.EnsureSchema(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		log.Printf("waiting for todos schema readiness: %v", lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
