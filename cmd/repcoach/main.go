package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/config"
	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/claude/repcoach/internal/nutrition"
	"github.com/claude/repcoach/internal/oracle/gemini"
	"github.com/claude/repcoach/internal/routine"
	"github.com/claude/repcoach/internal/server"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workoutimport"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepCoach starting", "version", Version)

	if err := config.LoadDotEnv(); err != nil {
		log.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Exercise catalog
	cat, err := catalog.Load(ctx, cfg.Catalog.Source)
	if err != nil {
		log.Error("failed to load exercise catalog", "source", cfg.Catalog.Source, "error", err)
		os.Exit(1)
	}
	log.Info("exercise catalog loaded", "source", cfg.Catalog.Source, "exercises", cat.Len())

	// Oracle
	llm, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, log)
	if err != nil {
		log.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	// Nutrition lookups, cached in SQLite
	cache, err := nutrition.OpenCache(cfg.USDA.CachePath, cfg.USDA.CacheTTL)
	if err != nil {
		log.Error("failed to open food cache", "path", cfg.USDA.CachePath, "error", err)
		os.Exit(1)
	}
	defer cache.Close()
	if n, err := cache.Prune(ctx); err != nil {
		log.Warn("food cache prune failed", "error", err)
	} else if n > 0 {
		log.Info("food cache pruned", "entries", n)
	}
	foods := nutrition.NewCachedLookup(nutrition.NewFDCClient(cfg.USDA.BaseURL, cfg.USDA.APIKey, log), cache, log)

	planner := routine.New(llm, cat, routine.Config{
		MaxRoundTrips:  cfg.Planner.MaxRoundTrips,
		SelectionLimit: cfg.Planner.SelectionLimit,
	}, log)

	mcpSrv := repmcp.New(repmcp.Backends{
		Data:      db,
		Exercises: repmcp.CatalogSearcher{Catalog: cat},
		Planner:   planner,
		Foods:     foods,
	}, Version, log)

	// Create server
	srv := server.New(server.Deps{
		Store:     db,
		Catalog:   cat,
		Planner:   planner,
		Sketcher:  routine.NewSketcher(llm, cat.Names(), log),
		Foods:     foods,
		Assistant: nutrition.NewAssistant(llm, foods, cfg.Planner.AssistantRoundTrips, log),
		Meals:     nutrition.NewMealPlanner(llm, log),
		Importer:  workoutimport.New(db, log),
		MCP:       mcpserver.NewStreamableHTTPServer(mcpSrv),
	}, cfg.Auth.APIKey, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	srv.Wait()
	log.Info("server stopped")
}
