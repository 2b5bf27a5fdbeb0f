package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/patternmon"
	"github.com/hupe1980/patternmon/codec"
	"github.com/hupe1980/patternmon/internal/config"
)

const rootLongDesc string = `patternmon turns JSON event messages into sparse ternary hypervectors.

Every top-level field is stored under semantic:v1:{field} and every message
under bundle:v1:{subject}.

  patternmon run        Consume Kafka topics and persist every message
  patternmon encode     Encode a single message from a file or stdin
  patternmon inspect    Decode a persisted vector
  patternmon list       List persisted keys`

// flagKeys maps flag names to viper keys. Flags a command does not define
// are skipped when binding.
var flagKeys = map[string]string{
	"bucket":        "bucket",
	"codec":         "codec",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"store":         "store.backend",
	"create-bucket": "store.create_bucket",
	"brokers":       "kafka.brokers",
	"topics":        "kafka.topics",
	"group-id":      "kafka.group_id",
	"concurrency":   "concurrency",
	"metrics-addr":  "metrics.addr",
}

type app struct {
	configFile string
	cfg        *config.Config
	logger     *patternmon.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "patternmon",
		Short:         "patternmon - hypervector encoder for event streams",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (yaml, toml or json)")
	pf.String("bucket", "", "bucket holding the vectors")
	pf.String("codec", "", fmt.Sprintf("vector codec (%v)", codec.Names()))
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json, pretty)")
	pf.String("store", "", "store backend (memory, local, s3, minio, dynamodb, sqlite)")
	pf.Bool("create-bucket", false, "create the bucket if the backend supports it")

	cmd.AddCommand(
		newRunCmd(a),
		newEncodeCmd(a),
		newInspectCmd(a),
		newListCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	v, err := config.InitViper(a.configFile)
	if err != nil {
		return err
	}
	bindFlags(v, cmd, flagKeys)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) {
	for name, key := range flags {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func newLogger(cfg *config.Config, w io.Writer) (*patternmon.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	switch cfg.Log.Format {
	case config.FormatJSON:
		return patternmon.NewJSONLogger(w, level), nil
	case config.FormatPretty:
		return patternmon.NewPrettyLogger(w, level), nil
	default:
		return patternmon.NewTextLogger(w, level), nil
	}
}

// monitorOptions translates the loaded configuration into Monitor options.
func (a *app) monitorOptions(extra ...patternmon.Option) []patternmon.Option {
	c, _ := codec.ByName(a.cfg.Codec)
	opts := []patternmon.Option{
		patternmon.WithBucket(a.cfg.Bucket),
		patternmon.WithCodec(c),
		patternmon.WithLogger(a.logger),
	}
	return append(opts, extra...)
}
