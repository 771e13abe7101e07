package commands

import (
	"github.com/lintang-b-s/tm-search/pkg/di"
	shortcontext "github.com/lintang-b-s/tm-search/pkg/di/context"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory over the remote protocol",
	Long: `Serve exposes the configured memory on API_PORT.
Clients log in with one of the API_USERS credentials.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := shortcontext.New()
		defer cancel()

		server, cleanup, err := di.InitializeTMServer()
		if err != nil {
			return err
		}
		defer cleanup()
		return server.Use(ctx)
	},
}
