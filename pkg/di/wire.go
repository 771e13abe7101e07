//go:build wireinject

//go:generate wire
package di

import (
	"github.com/lintang-b-s/tm-search/pkg/di/config"
	engine_di "github.com/lintang-b-s/tm-search/pkg/di/engine"
	logger_di "github.com/lintang-b-s/tm-search/pkg/di/logger"
	session_di "github.com/lintang-b-s/tm-search/pkg/di/session"
	"github.com/lintang-b-s/tm-search/pkg/engine"
	tmHttp "github.com/lintang-b-s/tm-search/pkg/http"
	"github.com/lintang-b-s/tm-search/pkg/http/http-router/controllers"
	"github.com/lintang-b-s/tm-search/pkg/http/usecases"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var defaultSet = wire.NewSet(
	config.New,
	logger_di.New,
	engine_di.New,
)

var serverSet = wire.NewSet(
	defaultSet,
	session_di.New,
	NewTMService,
	NewTMAPIServer,
)

func NewTMService(log *zap.Logger, memory engine.Engine) controllers.TMService {
	return usecases.New(log, memory)
}

func NewTMAPIServer(log *zap.Logger, tmService controllers.TMService,
	sessions *controllers.SessionStore) *tmHttp.Server {
	return tmHttp.NewServer(log, tmService, sessions)
}

func InitializeTMServer() (*tmHttp.Server, func(), error) {

	panic(wire.Build(serverSet))
}

// Memory is the configured memory with its logger, for command line use.
type Memory struct {
	Engine engine.Engine
	Log    *zap.Logger
}

func InitializeMemory() (*Memory, func(), error) {

	panic(wire.Build(defaultSet, wire.Struct(new(Memory), "*")))
}
