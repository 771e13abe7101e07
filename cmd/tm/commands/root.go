package commands

import (
	"encoding/json"
	"os"

	"github.com/lintang-b-s/tm-search/pkg/di"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var RootCmd = &cobra.Command{
	Use:   "tm",
	Short: "Fuzzy translation memory",
	Long: `tm manages a translation memory and searches it.

Configuration is read from config.yaml in the working directory and from the environment.
The flags below override both.

Examples:
  tm import memory.tmx --project manual
  tm search "Insert the battery" --src en --tgt fr --min 70
  tm concordance battery --src en --limit 20
  tm export out.tmx --src en --langs fr,de
  tm serve`,
	SilenceUsage: true,
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.String("engine", "", "memory engine: sqlite, sqlite3 or remote")
	flags.String("memory", "", "memory name")
	flags.String("workdir", "", "directory holding local memories")
	flags.String("remote-url", "", "url of a remote memory server")

	_ = viper.BindPFlag("ENGINE_TYPE", flags.Lookup("engine"))
	_ = viper.BindPFlag("MEMORY_NAME", flags.Lookup("memory"))
	_ = viper.BindPFlag("WORKDIR", flags.Lookup("workdir"))
	_ = viper.BindPFlag("REMOTE_URL", flags.Lookup("remote-url"))

	RootCmd.AddCommand(importCmd, exportCmd, searchCmd, concordanceCmd, languagesCmd, serveCmd)
}

// withMemory opens the configured memory, runs fn and closes the memory again.
func withMemory(fn func(memory *di.Memory) error) error {
	memory, cleanup, err := di.InitializeMemory()
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(memory)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
