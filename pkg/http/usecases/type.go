package usecases

import (
	"github.com/lintang-b-s/tm-search/pkg/engine"
)

// Memory is the engine the API serves; any engine.Engine implementation works.
type Memory interface {
	engine.Engine
}
