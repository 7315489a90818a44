package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/ajitpratap0/hudu-mcp/pkg/config"
	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/observability"
	"github.com/ajitpratap0/hudu-mcp/pkg/server"
	"github.com/ajitpratap0/hudu-mcp/pkg/tools"
	"github.com/ajitpratap0/hudu-mcp/pkg/transport"
)

// app holds the wired components for one process lifetime
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics observability.MetricsProvider
	tracer  *observability.TracingProvider
	server  *server.Server
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NopMetrics{},
	}

	if cfg.Metrics.Enabled {
		metrics, err := observability.NewMetricsProvider(observability.MetricsConfig{
			ServiceName:    server.DefaultName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
		})
		if err != nil {
			return nil, err
		}
		a.metrics = metrics
	}

	if cfg.Tracing.Exporter != "" {
		exporter, err := observability.ParseExporterType(cfg.Tracing.Exporter)
		if err != nil {
			return nil, err
		}
		tracer, err := observability.NewTracingProvider(observability.TracingConfig{
			ServiceName:    server.DefaultName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			ExporterType:   exporter,
			Endpoint:       cfg.Tracing.Endpoint,
			Insecure:       cfg.Tracing.Insecure,
		})
		if err != nil {
			return nil, err
		}
		a.tracer = tracer
	}

	client, err := hudu.NewClient(hudu.Config{
		BaseURL: cfg.Hudu.BaseURL,
		APIKey:  cfg.Hudu.APIKey,
		Timeout: cfg.Hudu.Timeout,
	},
		hudu.WithLogger(logger),
		hudu.WithMetrics(a.metrics),
		hudu.WithTracer(a.tracer),
	)
	if err != nil {
		return nil, err
	}

	registry, err := tools.NewRegistry(client, tools.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	a.server = server.New(
		server.WithVersion(version),
		server.WithToolsProvider(registry),
		server.WithResourcesProvider(server.NewResourceProvider(client, logger)),
		server.WithLogger(logger),
		server.WithMetrics(a.metrics),
		server.WithTracer(a.tracer),
	)
	return a, nil
}

// run serves the resolved transport until ctx ends or stdin closes
func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) (err error) {
	defer func() {
		err = multierr.Append(err, a.shutdown())
	}()

	mode := a.cfg.Mode()
	a.logger.Info("Starting Hudu MCP server",
		logging.String("version", version),
		logging.String("transport", string(mode)),
		logging.String("environment", a.cfg.Environment),
	)

	switch mode {
	case config.TransportHTTP:
		return a.runHTTP(ctx)
	default:
		return a.runStdio(ctx, in, out)
	}
}

func (a *app) runStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	handler := transport.ChainMiddleware(
		transport.RecoveryMiddleware(a.logger),
		transport.LoggingMiddleware(a.logger),
	).Wrap(a.server)

	t := transport.NewStdioTransport(in, out, handler, transport.WithStdioLogger(a.logger))
	if err := t.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	a.logger.Info("Stdio transport closed")
	return nil
}

func (a *app) runHTTP(ctx context.Context) error {
	opts := []server.HTTPOption{
		server.WithSSEInterval(a.cfg.Server.SSEInterval),
		server.WithHTTPLogger(a.logger),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, server.WithHTTPMetrics(a.metrics))
	}
	handler := server.NewHTTPHandler(a.server, opts...)

	t := transport.NewHTTPTransport(a.cfg.Addr(), handler,
		transport.WithShutdownTimeout(a.cfg.Server.ShutdownTimeout),
		transport.WithOnShutdown(handler.Close),
		transport.WithHTTPLogger(a.logger),
	)
	return t.Run(ctx)
}

// shutdown flushes pending spans
func (a *app) shutdown() error {
	if a.tracer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.tracer.Shutdown(ctx)
}
