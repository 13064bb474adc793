package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	"github.com/cschleiden/go-workflows/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/cschleiden/resume-publisher/internal/backends"
	"github.com/cschleiden/resume-publisher/internal/config"
	"github.com/cschleiden/resume-publisher/internal/events"
	"github.com/cschleiden/resume-publisher/internal/workflows"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	tracing := flag.Bool("tracing", false, "export traces via OTLP")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*configPath, *tracing, logger); err != nil {
		logger.Error("worker exited", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, tracing bool, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := []backend.BackendOption{backend.WithLogger(logger)}

	if tracing {
		tp, err := setupTracing(ctx)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tp.Shutdown(shutdownCtx)
		}()

		options = append(options, backend.WithTracerProvider(tp))
	}

	b, err := backends.New(cfg, options...)
	if err != nil {
		return err
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer publisher.Close()

	// Progress records are best effort, so a missing broker only logs. The
	// probe keeps the common "broker still starting" window quiet.
	probeCtx, cancelProbe := context.WithTimeout(ctx, 15*time.Second)
	if err := events.WaitForBroker(probeCtx, cfg.KafkaBrokers, 5, 2*time.Second, logger); err != nil {
		logger.Warn("kafka broker unreachable, progress events will be dropped", "err", err)
	}
	cancelProbe()

	w := worker.New(b, nil)

	if err := w.RegisterWorkflow(workflows.PublishResume); err != nil {
		return err
	}

	if err := w.RegisterActivity(workflows.NewActivities(cfg.APIBaseURL, publisher)); err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	logger.Info("worker started", "backend", cfg.Backend, "api", cfg.APIBaseURL)

	<-ctx.Done()

	logger.Info("shutting down worker")

	return w.WaitForCompletion()
}

func setupTracing(ctx context.Context) (*sdktrace.TracerProvider, error) {
	r := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("resume-publisher-worker"),
	)

	stdoutexp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	oclient := otlptracehttp.NewClient(otlptracehttp.WithInsecure())
	exp, err := otlptrace.New(ctx, oclient)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(stdoutexp),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)

	otel.SetTracerProvider(tp)

	return tp, nil
}
