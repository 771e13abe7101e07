package main

import (
	"log"

	"github.com/lintang-b-s/tm-search/pkg/di"
	shortcontext "github.com/lintang-b-s/tm-search/pkg/di/context"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := shortcontext.New()
	defer cancel()

	server, cleanup, err := di.InitializeTMServer()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := server.Use(ctx); err != nil {
		server.Log.Error("server stopped", zap.Error(err))
	}
}
