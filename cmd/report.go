package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeffreytso/contourdex/contour"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/util"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Prints corpus statistics: entry count, contour lengths and symbol frequencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()

		r, err := analyzeCorpus(cmd.Context(), idx)
		if err != nil {
			return err
		}
		r.write(os.Stdout)
		return nil
	},
}

type corpusReport struct {
	entries   int
	lengths   []float64
	symbols   map[rune]int
	composers map[string]int
}

// analyzeCorpus reads every entry back. Every contour starts with '*', so
// querying for it with the entry count as limit returns the whole corpus.
func analyzeCorpus(ctx context.Context, idx index.Index) (corpusReport, error) {
	r := corpusReport{symbols: make(map[rune]int), composers: make(map[string]int)}

	n, err := idx.Count(ctx)
	if err != nil {
		return r, err
	}
	r.entries = n

	entries, err := idx.Query(ctx, string(contour.Start), n)
	if err != nil {
		return r, err
	}
	for _, e := range entries {
		r.lengths = append(r.lengths, float64(len(e.Contour)))
		for _, s := range strings.ToUpper(strings.TrimPrefix(e.Contour, string(contour.Start))) {
			r.symbols[s]++
		}
		if e.Metadata != nil {
			r.composers[e.Metadata.Composer.Name]++
		}
	}
	return r, nil
}

func (r corpusReport) write(w io.Writer) {
	fmt.Fprintf(w, "entries: %v\n", r.entries)
	if len(r.lengths) == 0 {
		return
	}

	mean, std := stat.MeanStdDev(r.lengths, nil)
	fmt.Fprintf(w, "contour length mean: %.1f stddev: %.1f\n", mean, std)
	fmt.Fprintf(w, "contour length total: %.0f\n", util.Sum(r.lengths))

	var steps float64
	for _, c := range r.symbols {
		steps += float64(c)
	}
	for _, s := range []rune{contour.Up, contour.Down, contour.Repeat} {
		fmt.Fprintf(w, "%c: %d (%.1f%%)\n", s, r.symbols[s], 100*float64(r.symbols[s])/max(steps, 1))
	}

	for _, name := range util.GetKeys(r.composers) {
		fmt.Fprintf(w, "  %-32s %d\n", name, r.composers[name])
	}
}
