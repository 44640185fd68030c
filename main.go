package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/thunderbolt/assistant"
	"github.com/padraicbc/thunderbolt/catalog"
	"github.com/padraicbc/thunderbolt/config"
	"github.com/padraicbc/thunderbolt/db"
	"github.com/padraicbc/thunderbolt/handlers"
	applog "github.com/padraicbc/thunderbolt/logger"
	mw "github.com/padraicbc/thunderbolt/middleware"
	"github.com/padraicbc/thunderbolt/session"
)

//go:embed all:build/*
var embeddedFiles embed.FS

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	bdb, err := db.Setup(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("database setup failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	store, err := session.New(catalog.DefaultProfiles(), catalog.StandardEnvironment())
	if err != nil {
		logger.Fatal("seed profiles failed", zap.Error(err))
	}

	var ai assistant.Assistant
	if cfg.AIEnabled() {
		ai, err = assistant.New(assistant.Config{
			Provider: cfg.AIProvider,
			APIKey:   cfg.AIAPIKey,
			Model:    cfg.AIModel,
			Endpoint: cfg.AIEndpoint,
			Timeout:  cfg.AITimeout,
		})
		if err != nil {
			logger.Fatal("assistant setup failed", zap.String("provider", cfg.AIProvider), zap.Error(err))
		}
	} else {
		logger.Warn("no AI_API_KEY set, assistant will answer with the fallback message")
	}

	queries := db.NewQueryLog(bdb)
	svc := assistant.NewService(ai, cfg.AIProvider, queries, logger)
	h := handlers.New(db.NewUsers(bdb), queries, store, svc, cfg.JWTKey())

	e := echo.New()
	e.Use(applog.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	h.Register(e, mw.JWT(cfg.JWTKey()))

	// Strip the "build/" prefix so URLs work correctly
	subFS, err := fs.Sub(embeddedFiles, "build")
	if err != nil {
		logger.Fatal("open embedded build fs failed", zap.Error(err))
	}
	fileServer := http.FileServer(http.FS(subFS))
	e.GET("/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		// JS, CSS, images etc.
		if strings.Contains(path, ".") {
			http.StripPrefix("/", fileServer).ServeHTTP(c.Response(), c.Request())
			return nil
		}
		// SPA fallback
		indexFile, err := subFS.Open("index.html")
		if err != nil {
			return c.NoContent(http.StatusNotFound)
		}
		defer indexFile.Close()

		return c.Stream(http.StatusOK, "text/html", indexFile)
	})

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("starting server", zap.String("mode", "tls"), zap.Strings("domains", cfg.TLSDomains))
	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
