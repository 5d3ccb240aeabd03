package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jeffreytso/contourdex/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <contour>",
	Short: "Searches the corpus for a Parsons code",
	Long: `Searches the corpus for works whose melodic contour contains the given
Parsons code, e.g. "*UUD" or "UDRU". Matching is case-insensitive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()

		p, err := newPipeline(idx)
		if err != nil {
			return err
		}
		res := p.SearchByText(cmd.Context(), args[0])
		printResults(os.Stdout, res.Query, res.Results)
		return nil
	},
}

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.FgGreen)
	contourColor = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

func printResults(w io.Writer, contour string, results []model.CorpusEntry) {
	headerColor.Fprintf(w, "%d result(s) for %s\n", len(results), contour)
	for i, e := range results {
		title, composer := "(untitled)", ""
		if e.Metadata != nil {
			title = e.Metadata.Title
			composer = e.Metadata.Composer.Name
		}
		fmt.Fprintf(w, "%3d. ", i+1)
		titleColor.Fprint(w, title)
		if composer != "" {
			fmt.Fprintf(w, " by %s", composer)
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, "     ")
		contourColor.Fprintln(w, e.Contour)
		if e.MetadataRef != "" {
			dimColor.Fprintf(w, "     %s\n", e.MetadataRef)
		}
	}
}
