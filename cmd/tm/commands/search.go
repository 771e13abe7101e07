package commands

import (
	"github.com/lintang-b-s/tm-search/pkg/di"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Fuzzy search the memory",
	Long: `Search returns translation matches from --src to --tgt.
Without --tgt it returns the whole translation units whose source variant matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var concordanceCmd = &cobra.Command{
	Use:   "concordance <text|pattern>",
	Short: "Find units whose source variant contains the text",
	Args:  cobra.ExactArgs(1),
	RunE:  runConcordance,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages of the memory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMemory(func(memory *di.Memory) error {
			langs, err := memory.Engine.GetAllLanguages()
			if err != nil {
				return err
			}
			return printJSON(langs)
		})
	},
}

var (
	srcLang       string
	tgtLang       string
	minSimilarity int
	caseSensitive bool
	limit         int
	isRegexp      bool
)

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, concordanceCmd} {
		cmd.Flags().StringVar(&srcLang, "src", "", "source language")
		cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "compare case")
		_ = cmd.MarkFlagRequired("src")
	}
	searchCmd.Flags().StringVar(&tgtLang, "tgt", "", "target language")
	searchCmd.Flags().IntVar(&minSimilarity, "min", 70, "minimum similarity, 0 to 100")
	concordanceCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of units")
	concordanceCmd.Flags().BoolVar(&isRegexp, "regexp", false, "treat the argument as a regular expression")
}

func runSearch(cmd *cobra.Command, args []string) error {
	return withMemory(func(memory *di.Memory) error {
		if tgtLang == "" {
			units, err := memory.Engine.SearchAll(args[0], srcLang, minSimilarity, caseSensitive)
			if err != nil {
				return err
			}
			return printJSON(units)
		}
		matches, err := memory.Engine.SearchTranslation(args[0], srcLang, tgtLang, minSimilarity, caseSensitive)
		if err != nil {
			return err
		}
		return printJSON(matches)
	})
}

func runConcordance(cmd *cobra.Command, args []string) error {
	return withMemory(func(memory *di.Memory) error {
		units, err := memory.Engine.ConcordanceSearch(args[0], srcLang, limit, isRegexp, caseSensitive)
		if err != nil {
			return err
		}
		return printJSON(units)
	})
}
