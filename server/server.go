// Package server assembles the HTTP server: middleware, API routes, and the
// background embedding runner.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/server/ai"
	"github.com/insightink/insightink/server/middleware"
	apiv1 "github.com/insightink/insightink/server/router/api/v1"
	"github.com/insightink/insightink/server/runner/embedding"
	notesvc "github.com/insightink/insightink/server/service/note"
	tagsvc "github.com/insightink/insightink/server/service/tag"
	"github.com/insightink/insightink/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer      *echo.Echo
	embeddingRunner *embedding.Runner
}

// NewServer wires services, routes, and middleware. AI enrichment is attached
// only when the profile enables it and the provider config validates.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.CORS())
	echoServer.Use(middleware.RequestLogger())
	echoServer.Use(middleware.NewRateLimiter().Middleware())
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	var provider *ai.Provider
	if profile.IsAIEnabled() {
		p, err := ai.NewProvider(ai.ConfigFromProfile(profile))
		if err != nil {
			slog.Warn("AI enrichment disabled", "error", err)
		} else {
			provider = p
		}
	}

	tagService := tagsvc.NewService(store)
	var aiProvider notesvc.AIProvider
	if provider != nil {
		aiProvider = provider
		s.embeddingRunner = embedding.NewRunner(store, provider)
	}
	noteService := notesvc.NewService(store, tagService, aiProvider)

	apiV1Service := apiv1.NewAPIV1Service(noteService, tagService)
	apiV1Service.RegisterRoutes(echoServer.Group("/api/v1"))

	return s, nil
}

// Start runs the HTTP listener and background runners until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := s.echoServer.Start(address)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	if s.embeddingRunner != nil {
		group.Go(func() error {
			s.embeddingRunner.Run(groupCtx)
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echoServer.Shutdown(shutdownCtx)
	})

	slog.Info("server started", "address", address, "version", s.Profile.Version)
	return group.Wait()
}

// Shutdown closes the store after the listener has stopped.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}
