package http_router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/http/http-router/controllers"
	router_helper "github.com/lintang-b-s/tm-search/pkg/http/http-router/router-helper"
	http_server "github.com/lintang-b-s/tm-search/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

type Options struct {
	Sessions  *controllers.SessionStore
	RateLimit float64
}

// Handler builds the full middleware chain around the memory routes.
func (api *API) Handler(tmService controllers.TMService, opts Options) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Session", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")

	tmRoutes := controllers.New(tmService, opts.Sessions, api.log)
	tmRoutes.Routes(group)

	return alice.New(corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Labels, RateLimit(opts.RateLimit, 0)).Then(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	tmService controllers.TMService,
	opts Options,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(tmService, opts), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		api.log.Info("shutting down API")
		return srv.Shutdown(shutdownCtx)
	}
}
