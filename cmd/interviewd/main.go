// Command interviewd runs the AI interview orchestration service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/interviewd/api"
	"github.com/skillsenselab/interviewd/archive"
	"github.com/skillsenselab/interviewd/config"
	"github.com/skillsenselab/interviewd/llm"
	"github.com/skillsenselab/interviewd/llm/openai"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/observability"
	"github.com/skillsenselab/interviewd/recording"
	"github.com/skillsenselab/interviewd/server"
	"github.com/skillsenselab/interviewd/session"
	"github.com/skillsenselab/interviewd/transcription"
	"github.com/skillsenselab/interviewd/transcription/assemblyai"
	"github.com/skillsenselab/interviewd/util"
	"github.com/skillsenselab/interviewd/version"
)

const serviceName = "interviewd"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "interviewd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting interview service", logger.Fields(
		"version", version.GetShortVersion(),
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		v := version.GetVersionInfo()

		tp, err := observability.InitTracer(ctx, cfg.Observability.TracerConfig(cfg.Name, v.Version, cfg.Environment))
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer tp.Shutdown(context.Background())

		mp, err := observability.InitMeter(ctx, cfg.Observability.MeterConfig(cfg.Name, v.Version, cfg.Environment))
		if err != nil {
			return fmt.Errorf("initializing meter: %w", err)
		}
		defer mp.Shutdown(context.Background())

		metrics, err = observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return fmt.Errorf("creating metrics: %w", err)
		}
	}

	completionBackends := llm.NewRegistry()
	completionBackends.RegisterFactory(openai.ProviderName, openai.Factory())
	transcriptionBackends := transcription.NewRegistry()
	transcriptionBackends.RegisterFactory(assemblyai.ProviderName, assemblyai.Factory())

	completions, err := completionBackends.Create(cfg.Providers.Completion, cfg.OpenAI.Settings())
	if err != nil {
		return fmt.Errorf("creating completion provider: %w", err)
	}
	log.Info("Completion provider ready", logger.Fields(
		"provider", completions.Name(),
		"model", cfg.OpenAI.Model,
		"api_key", util.MaskSecret(cfg.OpenAI.APIKey, 6),
	))
	transcriber, err := transcriptionBackends.Create(cfg.Providers.Transcription, cfg.AssemblyAI.Settings())
	if err != nil {
		return fmt.Errorf("creating transcription provider: %w", err)
	}
	recorder, err := recording.NewController(cfg.Recording, log)
	if err != nil {
		return fmt.Errorf("creating recording controller: %w", err)
	}
	defer recorder.Close()

	manager := session.NewManager(completions, transcriber, log)

	archiver, err := archive.FromConfig(cfg.Archive, log)
	if err != nil {
		return fmt.Errorf("creating archiver: %w", err)
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, func(ctx context.Context) []observability.Health {
		return []observability.Health{
			observability.ProviderHealth(completions.Name(), completions.IsAvailable(ctx)),
			observability.ProviderHealth(transcriber.Name(), transcriber.IsAvailable(ctx)),
		}
	})

	handler := api.NewHandler(cfg.Interview, manager, recorder, archiver, metrics, log)
	handler.RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")
	return srv.Stop(context.Background())
}
