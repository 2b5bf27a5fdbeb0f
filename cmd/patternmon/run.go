package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/patternmon"
	prommetrics "github.com/hupe1980/patternmon/metrics/prometheus"
	"github.com/hupe1980/patternmon/transport"
	"github.com/hupe1980/patternmon/transport/kafka"
)

const runLongDesc string = `Consume the configured Kafka topics and persist every message.

The message subject is taken from the "subject" header and falls back to the
topic name. Offsets are committed once a message has been handled; store
failures leave the offset uncommitted.`

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Consume Kafka topics",
		Long:  runLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringSlice("brokers", nil, "Kafka bootstrap brokers")
	f.StringSlice("topics", nil, "Kafka topics to consume")
	f.String("group-id", "", "Kafka consumer group")
	f.Int("concurrency", 0, "messages handled in parallel")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func (a *app) run(ctx context.Context) error {
	if err := a.cfg.ValidateKafka(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	var (
		srv  *http.Server
		opts []patternmon.Option
	)
	if a.cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector, err := prommetrics.NewCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, patternmon.WithMetricsCollector(collector))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	mon, err := patternmon.New(store, a.monitorOptions(opts...)...)
	if err != nil {
		return err
	}

	src, err := kafka.NewSource(kafka.Config{
		Brokers: a.cfg.Kafka.Brokers,
		Topics:  a.cfg.Kafka.Topics,
		GroupID: a.cfg.Kafka.GroupID,
	})
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	a.logger.InfoContext(ctx, "consuming",
		"topics", a.cfg.Kafka.Topics,
		"group_id", a.cfg.Kafka.GroupID,
		"bucket", mon.Bucket(),
		"store", a.cfg.Store.Backend,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if srv != nil {
		g.Go(func() error {
			a.logger.InfoContext(gctx, "serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		d := &transport.Dispatcher{
			Source:      src,
			Handler:     mon,
			Concurrency: a.cfg.Concurrency,
			Logger:      a.logger.Logger,
		}
		if err := d.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
