package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/attributes"
	"github.com/mrzor/file-tracer/internal/classifier"
	"github.com/mrzor/file-tracer/internal/config"
	"github.com/mrzor/file-tracer/internal/eventprocessor"
	"github.com/mrzor/file-tracer/internal/eventstream"
	"github.com/mrzor/file-tracer/internal/filetable"
	"github.com/mrzor/file-tracer/internal/handlecache"
	"github.com/mrzor/file-tracer/internal/metrics"
	"github.com/mrzor/file-tracer/internal/output"
	"github.com/mrzor/file-tracer/internal/publisher"
	"github.com/mrzor/file-tracer/internal/relay"
	"github.com/mrzor/file-tracer/internal/volume"
)

// pipelineOptions holds the collaborators of a pipeline. Optional sinks are
// left nil when disabled.
type pipelineOptions struct {
	cfg        *config.Config
	attributes []config.CustomAttribute
	normalizer *volume.Normalizer
	rows       filetable.RowWriter
	registry   prometheus.Registerer

	tracer trace.Tracer
	nats   relay.NATSPublisher
	kafka  relay.KafkaProducer
}

type pipeline struct {
	stream    *eventstream.Stream
	publisher *publisher.Publisher
	cache     *handlecache.Cache
}

// newPipeline wires classifier, stream, processor and subscribers together.
// The stream is not started.
func newPipeline(opts pipelineOptions, logger *zap.Logger) (*pipeline, error) {
	m := metrics.New(opts.registry)

	cache, err := handlecache.New(opts.cfg.CacheCapacity, handlecache.WithOnEvict(func(uint64, string) {
		m.IncCacheEviction()
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create handle cache: %w", err)
	}
	m.WatchCacheSize(cache.Len)

	pub := publisher.New(logger, m)

	if opts.rows != nil {
		filter, err := attributes.NewFilter(opts.cfg.RowFilter)
		if err != nil {
			return nil, err
		}
		pub.Subscribe("table", filetable.NewSubscriber(filter, opts.rows, logger).Handle)
	}

	if opts.tracer != nil {
		evaluator, err := attributes.NewEvaluator(opts.attributes, logger)
		if err != nil {
			return nil, err
		}
		traceIDs, err := attributes.NewTraceIDEvaluator(opts.cfg.TraceID)
		if err != nil {
			return nil, err
		}
		pub.Subscribe("spans", output.NewSpanSubscriber(opts.tracer, evaluator, traceIDs, logger).Handle)
	}

	if opts.nats != nil {
		pub.Subscribe("nats", relay.NewNATSSubscriber(opts.nats, opts.cfg.NATSSubject).Handle)
	}
	if opts.kafka != nil {
		pub.Subscribe("kafka", relay.NewKafkaSubscriber(opts.kafka, opts.cfg.KafkaTopic).Handle)
	}

	processor := eventprocessor.NewProcessor(cache, opts.normalizer, pub, logger, m)
	stream := eventstream.New(classifier.New(logger, m), processor, opts.cfg.QueueSize, logger, m)

	return &pipeline{
		stream:    stream,
		publisher: pub,
		cache:     cache,
	}, nil
}
