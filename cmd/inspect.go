package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jeffreytso/contourdex/contour"
	"github.com/jeffreytso/contourdex/melody"
	"github.com/jeffreytso/contourdex/midi"
	"github.com/jeffreytso/contourdex/sample"
	"github.com/spf13/cobra"
)

var (
	excerptPath  string
	excerptNotes int
)

func init() {
	inspectCmd.Flags().StringVar(&excerptPath, "excerpt", "", "write the opening of the melody track to this MIDI file")
	inspectCmd.Flags().IntVar(&excerptNotes, "notes", sample.DefaultExcerptNotes, "number of notes in the excerpt")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <midi-file>",
	Short: "Inspects a MIDI file",
	Long:  `Prints the tracks of a MIDI file, the track picked as melody, its pitches and its contour.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(os.Stdout, args[0])
	},
}

func inspect(w io.Writer, path string) error {
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	score := midi.ToScore(parsed)
	pick, _ := melody.SelectMelodyTrack(score)

	for i, track := range score.Tracks {
		marker := " "
		if i == pick {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %2d %-24s %d events\n", marker, i, track.Name, len(track.Events))
	}

	seq, err := melody.Extract(score)
	if err != nil {
		return err
	}
	c, err := contour.EncodeSymbolic(seq)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "pitches: %v\n", seq)
	fmt.Fprint(w, "contour: ")
	contourColor.Fprintln(w, c)

	if excerptPath != "" {
		excerpt, err := sample.Create(parsed, excerptNotes)
		if err != nil {
			return err
		}
		if err := sample.WriteFile(excerptPath, excerpt); err != nil {
			return err
		}
		fmt.Fprintf(w, "excerpt: %s\n", excerptPath)
	}
	return nil
}
