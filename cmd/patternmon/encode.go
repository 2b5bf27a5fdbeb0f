package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/patternmon"
	"github.com/hupe1980/patternmon/kv"
)

type encodeOptions struct {
	subject string
	file    string
	dryRun  bool
}

func newEncodeCmd(a *app) *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a single message",
		Long: `Encode one JSON message read from --file or stdin and persist it.

With --dry-run nothing is written; the planned keys and sizes are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.encode(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.subject, "subject", "s", "", "message subject")
	f.StringVarP(&opts.file, "file", "f", "-", "file holding the message body, - for stdin")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the planned writes without storing them")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (a *app) encode(cmd *cobra.Command, opts *encodeOptions) error {
	ctx := cmd.Context()
	body, err := readBody(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}
	msg := patternmon.Message{Subject: opts.subject, Body: body}
	out := cmd.OutOrStdout()

	if opts.dryRun {
		mon, err := patternmon.New(kv.NewMemoryStore(), a.monitorOptions()...)
		if err != nil {
			return err
		}
		plan, err := mon.Process(msg)
		if err != nil {
			return err
		}
		if plan.Skipped() {
			fmt.Fprintf(out, "skipped: %v\n", plan.SkipReason)
			return nil
		}
		for _, w := range plan.Writes {
			fmt.Fprintf(out, "%s\t%s\t%d bytes\n", w.Kind, w.Key, len(w.Value))
		}
		return nil
	}

	store, closeStore, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	metrics := &patternmon.BasicMetricsCollector{}
	mon, err := patternmon.New(store, a.monitorOptions(patternmon.WithMetricsCollector(metrics))...)
	if err != nil {
		return err
	}
	if err := mon.Handle(ctx, msg); err != nil {
		return err
	}

	stats := metrics.GetStats()
	if stats.MessagesSkipped > 0 {
		fmt.Fprintln(out, "skipped: nothing stored")
		return nil
	}
	fmt.Fprintf(out, "stored %d semantic and %d bundle vector(s) (%d bytes) in %s\n",
		stats.SemanticWrites, stats.BundleWrites, stats.BytesWritten, mon.Bucket())
	return nil
}

func readBody(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
