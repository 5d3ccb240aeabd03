package cmd

import (
	"context"

	"github.com/jeffreytso/contourdex/audio"
	"github.com/jeffreytso/contourdex/constants"
	"github.com/jeffreytso/contourdex/db"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/metadata"
	"github.com/jeffreytso/contourdex/query"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	storeURI   string
)

var rootCmd = &cobra.Command{
	Use:   "contourdex",
	Short: "Melody search by Parsons code",
	Long: `contourdex indexes a corpus of scores by melodic contour (Parsons code)
and finds works from a typed contour, a hummed recording or notes played
on a MIDI keyboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := constants.LoadEnv(); err != nil {
			return err
		}
		if err := constants.LoadFile(configPath); err != nil {
			return err
		}
		level := logLevel
		if level == "" {
			level = constants.GetLogLevel()
		}
		logging.SetLevel(logging.ParseLevel(level))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&storeURI, "store", "", "store URI (default from STORE_URI)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func openIndex(ctx context.Context) (index.Index, error) {
	uri := storeURI
	if uri == "" {
		uri = constants.GetStoreURI()
	}
	logging.Debug("opening store", logging.Fields{"uri": uri})
	return db.Open(ctx, uri)
}

// openMetadata returns nil when no metadata table is configured.
func openMetadata() (*metadata.Dynamo, error) {
	table := constants.GetMetadataTable()
	if table == "" {
		return nil, nil
	}
	return metadata.NewDynamo(table, constants.GetMetadataRegion(), constants.GetMetadataEndpoint())
}

func newPipeline(idx index.Index) (*query.Pipeline, error) {
	opts := []query.Option{
		query.WithDecoder(audio.NewAutoDecoder(constants.GetFFmpegPath(), constants.GetFFprobePath())),
	}
	md, err := openMetadata()
	if err != nil {
		return nil, err
	}
	if md != nil {
		opts = append(opts, query.WithResolver(md))
	}
	return query.New(idx, opts...), nil
}
