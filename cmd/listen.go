package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/query"
	"github.com/jeffreytso/contourdex/sample"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	listenPort  int
	listenQuiet time.Duration
	recordPath  string
)

func init() {
	listenCmd.Flags().IntVar(&listenPort, "port", 0, "MIDI input port number")
	listenCmd.Flags().DurationVar(&listenQuiet, "quiet", 1500*time.Millisecond, "silence that ends a phrase")
	listenCmd.Flags().StringVar(&recordPath, "record", "", "write each searched phrase to this MIDI file")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Searches with notes played on a MIDI keyboard",
	Long: `Listens on a MIDI input port. Once playing pauses for --quiet, the notes
played so far are searched as a phrase.`,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return listen(ctx, p)
	},
}

// phraseListener collects note starts and searches them once the player
// goes quiet.
type phraseListener struct {
	pipeline *query.Pipeline
	out      io.Writer
	record   string
	ctx      context.Context

	mu        sync.Mutex
	notes     []uint8
	debounced func(func())
}

func newPhraseListener(ctx context.Context, p *query.Pipeline, out io.Writer, quiet time.Duration) *phraseListener {
	return &phraseListener{
		pipeline:  p,
		out:       out,
		ctx:       ctx,
		debounced: debounce.New(quiet),
	}
}

func (l *phraseListener) noteOn(key uint8) {
	l.mu.Lock()
	l.notes = append(l.notes, key)
	l.mu.Unlock()
	l.debounced(l.flush)
}

func (l *phraseListener) flush() {
	l.mu.Lock()
	phrase := l.notes
	l.notes = nil
	l.mu.Unlock()

	res := l.pipeline.SearchByNotes(l.ctx, phrase)
	if res.Query == "" {
		return
	}
	printResults(l.out, res.Query, res.Results)

	if l.record != "" {
		if err := sample.WriteFile(l.record, sample.FromNotes(phrase, 240)); err != nil {
			logging.Error(err, "could not record phrase", logging.Fields{"path": l.record})
		}
	}
}

func listen(ctx context.Context, p *query.Pipeline) error {
	defer gomidi.CloseDriver()

	in, err := gomidi.InPort(listenPort)
	if err != nil {
		return xerrors.New("open MIDI input port", err)
	}
	logging.Info("listening", logging.Fields{"port": in.String(), "quiet": listenQuiet.String()})

	l := newPhraseListener(ctx, p, os.Stdout, listenQuiet)
	l.record = recordPath

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			l.noteOn(key)
		}
	})
	if err != nil {
		return xerrors.New("listen to MIDI input", err)
	}
	defer stop()

	<-ctx.Done()
	return nil
}
