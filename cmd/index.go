package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/jeffreytso/contourdex/constants"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/ingest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [maxNum]",
	Short: "Creates index",
	Long: `Walks MEDIA_PATH for directories holding a LilyPond source and its MIDI
rendering, and replaces the store contents with their melodic contours.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			maxNum = n
		}

		root, err := constants.GetMediaDir()
		if err != nil {
			return err
		}
		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()

		_, err = Index(cmd.Context(), idx, root, maxNum)
		return err
	},
}

// Index ingests the corpus under root into idx.
func Index(ctx context.Context, idx index.Index, root string, maxNum int) (ingest.Stats, error) {
	in := ingest.New(idx)
	in.Workers = constants.GetIngestWorkers()
	in.Progress = os.Stderr

	md, err := openMetadata()
	if err != nil {
		return ingest.Stats{}, err
	}
	if md != nil {
		in.Metadata = md
	}
	return in.Run(ctx, root, maxNum)
}
