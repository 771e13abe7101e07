package engine_di

import (
	"github.com/lintang-b-s/tm-search/pkg/di/config"
	"github.com/lintang-b-s/tm-search/pkg/engine"
	"github.com/lintang-b-s/tm-search/pkg/remote"
	"github.com/lintang-b-s/tm-search/pkg/sqlstore"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const ENGINE_REMOTE = "remote"

// New opens the memory selected by ENGINE_TYPE.
func New(_ *config.Config, log *zap.Logger) (engine.Engine, func(), error) {
	engineType := viper.GetString("ENGINE_TYPE")

	var (
		memory engine.Engine
		err    error
	)
	if engineType == ENGINE_REMOTE {
		memory, err = remote.NewClient(remote.Config{
			URL:      viper.GetString("REMOTE_URL"),
			User:     viper.GetString("REMOTE_USER"),
			Password: viper.GetString("REMOTE_PASSWORD"),
			Timeout:  viper.GetDuration("REMOTE_TIMEOUT"),
		}, log)
	} else {
		driver, ok := sqlstore.Drivers()[engineType]
		if !ok {
			return nil, nil, util.WrapErrorf(nil, util.ErrConfiguration, "unknown ENGINE_TYPE %q", engineType)
		}
		memory, err = engine.NewLocalEngine(engine.LocalConfig{
			Driver:         driver,
			WorkDir:        viper.GetString("WORKDIR"),
			Memory:         viper.GetString("MEMORY_NAME"),
			UnitCacheSize:  viper.GetInt("UNIT_CACHE_SIZE"),
			CommitInterval: viper.GetInt("IMPORT_COMMIT_INTERVAL"),
			User:           viper.GetString("TM_USER"),
		}, log)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := memory.Close(); err != nil {
			log.Warn("error when closing memory", zap.String("memory", memory.Name()), zap.Error(err))
		}
	}
	return memory, cleanup, nil
}
