package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcastillo-osint/guardian-pipeline/internal/config"
	"github.com/jcastillo-osint/guardian-pipeline/internal/geocode"
	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
	"github.com/jcastillo-osint/guardian-pipeline/internal/pipeline"
	"github.com/jcastillo-osint/guardian-pipeline/internal/schema"
	"github.com/jcastillo-osint/guardian-pipeline/internal/store"
)

// runtime bundles the wired pipeline components for one command invocation.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	geo       *geocode.Client
	validator *schema.Validator
	processor *pipeline.Processor
	audit     store.AuditStore
}

// newRuntime loads config and wires everything short of the model provider,
// which only the agent command needs.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	var geo *geocode.Client
	if cfg.Geocode.Enabled {
		opts := []geocode.Option{geocode.WithCacheFile(cfg.Geocode.CachePath)}
		if cfg.Geocode.BaseURL != "" {
			opts = append(opts, geocode.WithBaseURL(cfg.Geocode.BaseURL))
		}
		if cfg.Geocode.CacheOnly {
			opts = append(opts, geocode.CacheOnly())
		}
		geo = geocode.NewClient(logger, opts...)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var audit store.AuditStore = store.NopStore{}
	if cfg.Store.DSN != "" {
		s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			logger.Warn("audit store unavailable, continuing without it", slog.Any("error", err))
		} else {
			audit = s
		}
	}

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		geo:       geo,
		validator: validator,
		processor: pipeline.NewProcessor(logger, geo, cfg.Geocode.Enabled),
		audit:     audit,
	}, nil
}

// newAgent wires the model-assisted path on top of the base runtime.
func (rt *runtime) newAgent() (*pipeline.Agent, error) {
	provider, err := llm.New(rt.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return pipeline.NewAgent(rt.logger, provider, rt.validator, rt.processor), nil
}

// close flushes the geocode cache and closes the audit store.
func (rt *runtime) close() {
	if rt.geo != nil {
		if err := rt.geo.Flush(); err != nil {
			rt.logger.Warn("flushing geocode cache", slog.Any("error", err))
		}
	}
	if err := rt.audit.Close(); err != nil {
		rt.logger.Warn("closing audit store", slog.Any("error", err))
	}
}
