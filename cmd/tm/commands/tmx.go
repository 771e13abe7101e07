package commands

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/tm-search/pkg/di"
	"github.com/lintang-b-s/tm-search/pkg/engine"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import <file.tmx>",
	Short: "Import a TMX file into the memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.tmx>",
	Short: "Export the memory to a TMX file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var (
	importProject  string
	importCustomer string
	importSubject  string

	exportSrcLang string
	exportLangs   []string
)

func init() {
	importCmd.Flags().StringVar(&importProject, "project", "", "project recorded on units that have none")
	importCmd.Flags().StringVar(&importCustomer, "customer", "", "customer recorded on units that have none")
	importCmd.Flags().StringVar(&importSubject, "subject", "", "subject recorded on units that have none")

	exportCmd.Flags().StringVar(&exportSrcLang, "src", "", "source language written in the header")
	exportCmd.Flags().StringSliceVar(&exportLangs, "langs", nil, "languages to export, all when empty")
	_ = exportCmd.MarkFlagRequired("src")
}

func runImport(cmd *cobra.Command, args []string) error {
	return withMemory(func(memory *di.Memory) error {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Importing translation units..."),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))

		count, err := memory.Engine.ImportTMX(args[0], engine.ImportOptions{
			Project:  importProject,
			Customer: importCustomer,
			Subject:  importSubject,
			Progress: func(n int) { _ = bar.Set(n) },
		})
		_ = bar.Finish()
		fmt.Println()
		if err != nil {
			return err
		}
		memory.Log.Info("import done", zap.String("file", args[0]), zap.Int("units", count))
		fmt.Printf("imported %d translation units into %s\n", count, memory.Engine.Name())
		return nil
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	return withMemory(func(memory *di.Memory) error {
		if err := memory.Engine.ExportTMX(args[0], exportLangs, exportSrcLang); err != nil {
			return err
		}
		langs := "all languages"
		if len(exportLangs) > 0 {
			langs = strings.Join(exportLangs, ",")
		}
		fmt.Printf("exported %s (%s) to %s\n", memory.Engine.Name(), langs, args[0])
		return nil
	})
}
