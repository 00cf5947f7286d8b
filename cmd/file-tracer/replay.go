package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/config"
	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/filetable"
	"github.com/mrzor/file-tracer/internal/otel"
	"github.com/mrzor/file-tracer/internal/relay"
	"github.com/mrzor/file-tracer/internal/tracefile"
)

const shutdownTimeout = 5 * time.Second

type replayOptions struct {
	cacheCapacity int
	queueSize     int
	rowFilter     string
	metricsAddr   string
	natsURL       string
	natsSubject   string
	kafkaBrokers  []string
	kafkaTopic    string
	spans         bool
	traceID       string
	attributes    []string
}

func replayCmd(global *globalOptions) *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Feed recorded trace records through the pipeline",
		Long: `Replay recorded kernel file trace records (JSON lines) through the
classifier, correlator and subscribers. Table rows are written to stdout as
JSON lines.

Settings are read from FILE_TRACER_* environment variables; flags override
them. FILE_TRACER_ENABLE_FILE_EVENTS=true is required.

Examples:
  # Replay with the default System-process row filter
  file-tracer replay trace.jsonl

  # Every event, with spans and a custom attribute
  file-tracer replay --row-filter 'true' --spans -a 'file.dir=new_path' trace.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, global, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.cacheCapacity, "cache-capacity", 0, "Handle cache capacity (FILE_TRACER_CACHE_CAPACITY)")
	flags.IntVar(&opts.queueSize, "queue-size", 0, "Post-processing queue size (FILE_TRACER_QUEUE_SIZE)")
	flags.StringVar(&opts.rowFilter, "row-filter", "", "Expression selecting table rows (FILE_TRACER_ROW_FILTER)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (FILE_TRACER_METRICS_ADDR)")
	flags.StringVar(&opts.natsURL, "nats-url", "", "Publish events to this NATS server (FILE_TRACER_NATS_URL)")
	flags.StringVar(&opts.natsSubject, "nats-subject", "", "NATS subject (FILE_TRACER_NATS_SUBJECT)")
	flags.StringSliceVar(&opts.kafkaBrokers, "kafka-brokers", nil, "Produce events to these Kafka brokers (FILE_TRACER_KAFKA_BROKERS)")
	flags.StringVar(&opts.kafkaTopic, "kafka-topic", "", "Kafka topic (FILE_TRACER_KAFKA_TOPIC)")
	flags.BoolVar(&opts.spans, "spans", false, "Export events as OpenTelemetry spans (FILE_TRACER_SPANS)")
	flags.StringVarP(&opts.traceID, "trace-id", "t", "", "Expression grouping spans into traces (FILE_TRACER_TRACE_ID)")
	flags.StringArrayVarP(&opts.attributes, "attribute", "a", nil, "Custom span attribute NAME=EXPR, repeatable")

	return cmd
}

// applyFlags overrides cfg with the flags set on cmd.
func applyFlags(cmd *cobra.Command, cfg *config.Config, global *globalOptions, opts *replayOptions) {
	flags := cmd.Flags()
	if flags.Changed("cache-capacity") {
		cfg.CacheCapacity = opts.cacheCapacity
	}
	if flags.Changed("queue-size") {
		cfg.QueueSize = opts.queueSize
	}
	if flags.Changed("row-filter") {
		cfg.RowFilter = opts.rowFilter
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if flags.Changed("nats-url") {
		cfg.NATSURL = opts.natsURL
	}
	if flags.Changed("nats-subject") {
		cfg.NATSSubject = opts.natsSubject
	}
	if flags.Changed("kafka-brokers") {
		cfg.KafkaBrokers = opts.kafkaBrokers
	}
	if flags.Changed("kafka-topic") {
		cfg.KafkaTopic = opts.kafkaTopic
	}
	if flags.Changed("spans") {
		cfg.EnableSpans = opts.spans
	}
	if flags.Changed("trace-id") {
		cfg.TraceID = opts.traceID
	}
	if len(global.volumes) > 0 {
		cfg.Volumes = global.volumes
	}
}

func runReplay(cmd *cobra.Command, global *globalOptions, opts *replayOptions, files []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, global, opts)

	if err := cfg.RequireFileEvents(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	customAttrs, err := config.ParseCustomAttributes(opts.attributes)
	if err != nil {
		return err
	}

	logger, err := newLogger(global.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	normalizer, err := loadNormalizer(cfg.Volumes, logger)
	if err != nil {
		return err
	}
	logger.Info("Volume table loaded", zap.Int("mappings", normalizer.Len()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	popts := pipelineOptions{
		cfg:        cfg,
		attributes: customAttrs,
		normalizer: normalizer,
		rows:       filetable.NewJSONLWriter(cmd.OutOrStdout()),
		registry:   registry,
	}

	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	if cfg.MetricsAddr != "" {
		cleanups = append(cleanups, startMetricsServer(cfg.MetricsAddr, registry, logger))
	}

	if cfg.EnableSpans {
		tracer, cleanup, err := setupOTEL(logger)
		if err != nil {
			return err
		}
		popts.tracer = tracer
		cleanups = append(cleanups, cleanup)
	}

	if cfg.NATSURL != "" {
		nc, err := relay.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		popts.nats = nc
		cleanups = append(cleanups, func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("Error draining NATS connection", zap.Error(err))
			}
		})
	}

	if len(cfg.KafkaBrokers) > 0 {
		client, err := relay.NewKafkaClient(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		popts.kafka = client
		cleanups = append(cleanups, client.Close)
	}

	p, err := newPipeline(popts, logger)
	if err != nil {
		return err
	}
	logger.Info("Pipeline ready",
		zap.Strings("subscribers", p.publisher.Subscribers()),
		zap.Int("cache_capacity", p.cache.Capacity()))

	if err := p.stream.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event stream: %w", err)
	}

	// Recorded input can wait for the worker, so nothing is dropped.
	submit := func(rec etw.RawRecord) bool {
		return p.stream.SubmitWait(ctx, rec)
	}

	var replayErr error
	for _, file := range files {
		stats, err := tracefile.ReplayFile(ctx, file, submit, logger)
		logger.Info("Replayed trace file",
			zap.String("file", file),
			zap.Int("records", stats.Records),
			zap.Int("accepted", stats.Accepted),
			zap.Int("malformed", stats.Skipped))
		if err != nil {
			replayErr = err
			break
		}
	}

	if err := p.stream.Stop(); err != nil {
		logger.Warn("Error stopping event stream", zap.Error(err))
	}
	logger.Info("Replay finished",
		zap.Uint64("processed", p.stream.Processed()),
		zap.Uint64("dropped", p.stream.Dropped()),
		zap.Int("cached_handles", p.cache.Len()))

	if errors.Is(replayErr, context.Canceled) {
		logger.Info("Replay interrupted")
		return nil
	}
	return replayErr
}

// setupOTEL initializes the OTEL provider and returns a tracer and cleanup function.
func setupOTEL(logger *zap.Logger) (trace.Tracer, func(), error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, err
	}

	tp, err := otel.InitProvider(otelCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otel.ShutdownProvider(ctx, tp); err != nil {
			logger.Warn("Error shutting down OTEL provider", zap.Error(err))
		}
	}

	return tp.Tracer("file-tracer"), cleanup, nil
}

// startMetricsServer serves /metrics and /health on addr until the returned
// function is called.
func startMetricsServer(addr string, registry *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"file-tracer"}`))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down metrics server", zap.Error(err))
		}
	}
}
