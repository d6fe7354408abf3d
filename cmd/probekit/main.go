package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/probekit/probekit/internal/baseline"
	"github.com/probekit/probekit/internal/bench"
	"github.com/probekit/probekit/internal/config"
	"github.com/probekit/probekit/internal/dispatch"
	"github.com/probekit/probekit/internal/output"
	"github.com/probekit/probekit/internal/profile"
	"github.com/probekit/probekit/internal/threshold"
	"github.com/probekit/probekit/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

var (
	errThresholdFailed = errors.New("one or more thresholds failed")
	errRegression      = errors.New("benchmark regressed against baseline")
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLog(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	thresholds, err := loadThresholds(cfg)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("trace provider shutdown")
		}
	}()

	capture, err := dispatch.NewCapture(
		newHTTPDispatcher(cfg.Timeout),
		tracing.NewSpanTracer(provider.Tracer()),
	)
	if err != nil {
		return err
	}

	session, err := profile.NewSession(cfg.Name)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	request := &httpRequest{
		Method:  cfg.Method,
		URL:     cfg.Target,
		Headers: cfg.Headers,
		Body:    cfg.Body,
	}
	op := bench.Returning(func(ctx context.Context) (any, error) {
		begin := time.Now()
		response, _, err := capture.Send(ctx, request)
		if err != nil {
			return nil, err
		}
		_ = session.AddOperation(profile.OperationMetrics{
			Name:     cfg.Name,
			Duration: time.Since(begin),
		})
		return response, nil
	})

	runner := bench.New(bench.Options{
		RequestType: cfg.Name,
		HandlerType: "http dispatch",
		Iterations:  cfg.Iterations,
		Warmup:      cfg.Warmup,
		Pace:        cfg.Pace,
	})

	log.Info().
		Str("target", cfg.Target).
		Str("method", cfg.Method).
		Int("iterations", runner.Iterations()).
		Int("warmup", cfg.Warmup).
		Msg("starting benchmark")

	result, err := runner.Run(ctx, op)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("benchmark cancelled, partial samples discarded")
		}
		return err
	}
	if err := session.Stop(); err != nil {
		return err
	}

	thresholdResults := threshold.NewEvaluator(thresholds).Evaluate(result)

	var deltas []baseline.Delta
	if cfg.Baseline != "" {
		if cfg.UpdateBaseline {
			if err := baseline.Save(cfg.Baseline, result); err != nil {
				return err
			}
			log.Info().Str("path", cfg.Baseline).Msg("baseline updated")
		} else {
			deltas, err = baseline.Compare(cfg.Baseline, result, cfg.TolerancePct)
			if err != nil {
				return err
			}
		}
	}

	if cfg.JSONOutput {
		report := struct {
			Benchmark  bench.Result         `json:"benchmark"`
			Session    profile.SessionStats `json:"session"`
			Deltas     []baseline.Delta     `json:"baseline_deltas,omitempty"`
			Thresholds []string             `json:"failed_thresholds,omitempty"`
		}{
			Benchmark: result,
			Session:   session.Snapshot(),
			Deltas:    deltas,
		}
		for _, tr := range thresholdResults {
			if !tr.Pass {
				report.Thresholds = append(report.Thresholds, tr.Message)
			}
		}
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, result)
		output.PrintSessionReport(os.Stdout, session.Snapshot())
		output.PrintThresholdResults(os.Stdout, thresholdResults)
		output.PrintDeltas(os.Stdout, deltas)
	}

	for _, tr := range thresholdResults {
		if !tr.Pass {
			return errThresholdFailed
		}
	}
	if baseline.AnyRegressed(deltas) {
		return errRegression
	}
	return nil
}

func loadThresholds(cfg *config.Config) ([]threshold.Threshold, error) {
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return nil, err
	}
	if cfg.ThresholdFile != "" {
		fromFile, err := threshold.LoadSuite(cfg.ThresholdFile)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, fromFile...)
	}
	return thresholds, nil
}

func setupLog(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
