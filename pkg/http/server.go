package http

import (
	"context"

	http_router "github.com/lintang-b-s/tm-search/pkg/http/http-router"
	"github.com/lintang-b-s/tm-search/pkg/http/http-router/controllers"
	http_server "github.com/lintang-b-s/tm-search/pkg/http/server"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log       *zap.Logger
	tmService controllers.TMService
	sessions  *controllers.SessionStore
}

func NewServer(log *zap.Logger, tmService controllers.TMService, sessions *controllers.SessionStore) *Server {
	return &Server{Log: log, tmService: tmService, sessions: sessions}
}

// Use serves the memory until ctx is cancelled.
func (s *Server) Use(ctx context.Context) error {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "1000s")
	viper.SetDefault("API_RATE_LIMIT", 0)

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(s.Log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(
			gctx, config, s.tmService, http_router.Options{
				Sessions:  s.sessions,
				RateLimit: viper.GetFloat64("API_RATE_LIMIT"),
			},
		)
	})

	return g.Wait()
}
