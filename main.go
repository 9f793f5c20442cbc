package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"Zelvix/pkg/cache"
	"Zelvix/pkg/config"
	"Zelvix/pkg/preview"
	svc "Zelvix/pkg/services"
	"Zelvix/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.LogSummary()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kb, err := svc.NewKnowledgeBase(cfg.FAQPath, cfg.WidgetConfigPath)
	if err != nil {
		log.Fatalf("knowledge: %v", err)
	}

	var gen svc.Generator = svc.NewGeminiService(cfg)
	if !cfg.IsGeminiEnabled {
		log.Printf("[chat] Gemini disabled, answering from the FAQ only")
		gen = svc.NewLocalResponder(kb)
	}

	replyCache := cache.New(cfg.ChatCacheMaxItems)
	replyCache.StartJanitor(time.Minute, ctx.Done())
	relay := svc.NewChatRelay(kb, gen,
		svc.WithReplyCache(replyCache, cfg.ChatCacheTTL()),
		svc.WithTimeout(cfg.GeminiTimeout()),
	)

	store, err := svc.NewUploadStore(cfg.UploadsDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}
	if keep := cfg.UploadRetention(); keep > 0 {
		store.StartRetention(keep, time.Hour, ctx.Done())
	}

	var index svc.UploadIndex = svc.NopIndex{}
	if cfg.DatabaseDSN != "" {
		gi, err := svc.OpenMySQLIndex(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("upload index: %v", err)
		}
		defer gi.Close()
		index = gi
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	// CORS configuration
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	routes.RegisterRoutes(r, routes.Dependencies{
		Config:    cfg,
		Knowledge: kb,
		Relay:     relay,
		Uploads:   store,
		Index:     index,
		Previews:  preview.DefaultRegistry(),
		Sessions:  svc.NewSessionIssuer(cfg.SessionSecret),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[server] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[server] shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
