package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
	"github.com/ohadf2015/boggle-new-sub010/internal/game"
	"github.com/ohadf2015/boggle-new-sub010/internal/handlers"
	"github.com/ohadf2015/boggle-new-sub010/internal/profile"
	"github.com/ohadf2015/boggle-new-sub010/internal/ratelimit"
	"github.com/ohadf2015/boggle-new-sub010/internal/reaper"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	util.LogInfo("Starting word game server in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	cfg := config.FromEnv(isProduction)

	dict := dictionary.NewStatic()
	if err := loadDictionaries(dict, util.GetEnvStr("DICTIONARY_DIR", "data/dictionaries")); err != nil {
		util.LogFatal("Failed to load dictionaries: %v", err)
	}

	prof := profile.NewClient(cfg.ProfileServiceURL, cfg.GuestTokenSecret)
	registry := game.NewRegistry(cfg, dict, dictionary.NoArbiter{}, prof)
	gate := ratelimit.NewGate(cfg.ConnBudget, cfg.OriginBudget, cfg.RateWindow, cfg.BlockDuration, cfg.LimiterTTL)

	router := gin.Default()
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(rateLimitMiddleware(gate))
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	h := handlers.New(cfg, registry, gate, prof)
	h.Register(router)

	sweeper, err := reaper.Start(cfg, registry, gate)
	if err != nil {
		util.LogFatal("Failed to start reaper: %v", err)
	}
	defer sweeper.Stop()

	startServer(router, cfg.Port)
}

// loadDictionaries reads one word list per language from dir; the file name
// before the extension is the language code (en.txt, de.txt, ...).
func loadDictionaries(dict *dictionary.Static, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		language := strings.TrimSuffix(entry.Name(), ".txt")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		words := strings.Split(string(data), "\n")
		dict.Load(language, words)
		util.LogInfo("Loaded %d words for language %q", len(words), language)
		loaded++
	}
	if loaded == 0 {
		util.LogWarn("No dictionary files found in %s; every word will need arbitration", dir)
	}
	return nil
}

func startServer(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}
