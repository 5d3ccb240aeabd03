package cmd

import (
	"os"

	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(humCmd)
}

var humCmd = &cobra.Command{
	Use:   "hum <audio-file>",
	Short: "Searches the corpus with a hummed or played recording",
	Long: `Estimates the melodic contour of a monophonic recording and searches the
corpus with it. WAV is read natively; other formats go through ffmpeg.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return xerrors.New("read recording", err)
		}

		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()

		p, err := newPipeline(idx)
		if err != nil {
			return err
		}
		res := p.SearchByAudio(cmd.Context(), data)
		if res.GeneratedContour == nil {
			headerColor.Fprintln(os.Stdout, "no melody found in recording")
			return nil
		}
		printResults(os.Stdout, *res.GeneratedContour, res.Results)
		return nil
	},
}
