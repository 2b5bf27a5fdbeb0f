package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/patternmon"
	"github.com/hupe1980/patternmon/codec"
	"github.com/hupe1980/patternmon/vsa"
)

type inspectOptions struct {
	compare string
	asJSON  bool
}

func newInspectCmd(a *app) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect KEY",
		Short: "Decode a persisted vector",
		Long: `Decode the vector stored under KEY and print its shape.

With --compare the cosine similarity to a second stored vector is printed.
Comparing a bundle with a semantic vector shows whether the field took part
in the message.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.compare, "compare", "", "second key to compare against")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the vector as JSON")
	return cmd
}

func (a *app) inspect(cmd *cobra.Command, key string, opts *inspectOptions) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	c, _ := codec.ByName(a.cfg.Codec)
	v, err := patternmon.Lookup(ctx, store, a.cfg.Bucket, key, c)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		data, err := codec.GoJSON{}.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printVector(cmd, key, v)

	if opts.compare == "" {
		return nil
	}
	other, err := patternmon.Lookup(ctx, store, a.cfg.Bucket, opts.compare, c)
	if err != nil {
		return err
	}
	printVector(cmd, opts.compare, other)
	sim, err := vsa.Cosine(v, other)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "cosine\t%.4f\n", sim)
	return nil
}

func printVector(cmd *cobra.Command, key string, v *vsa.SparseVec) {
	out := cmd.OutOrStdout()
	kind, name, ok := patternmon.ParseKey(key)
	if !ok {
		kind, name = "unknown", key
	}
	fmt.Fprintf(out, "%s\t%s %q\tdim=%d nnz=%d (+%d -%d)\n",
		key, kind, name, v.Dimension(), v.NNZ(), len(v.Positive()), len(v.Negative()))
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List persisted keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			store, closeStore, err := openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			keys, err := patternmon.Keys(cmd.Context(), store, a.cfg.Bucket, prefix)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
