// Command inflation fetches the raw economic series, runs the forecasting
// pipeline, and renders the HTML report and accuracy tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	inflation "github.com/Allisterh/inflation-forecasting"
	"github.com/Allisterh/inflation-forecasting/fred"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "INFLATION_"
	monthFormat = "2006-01"
)

type config struct {
	Fred struct {
		APIKey         string `koanf:"api_key"`
		BaseURL        string `koanf:"base_url"`
		TimeoutSeconds int    `koanf:"timeout_seconds"`
		MaxRetries     uint64 `koanf:"max_retries"`
	} `koanf:"fred"`
	Range struct {
		Start  string `koanf:"start"`
		End    string `koanf:"end"`
		Cutoff string `koanf:"cutoff"`
	} `koanf:"range"`
}

func loadConfig(path string) (*config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("unable to load config file %s, %w", path, err)
		}
	}

	// INFLATION_FRED_API_KEY -> fred.api_key
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if name, ok := strings.CutPrefix(s, "fred_"); ok {
			return "fred." + name
		}
		if name, ok := strings.CutPrefix(s, "range_"); ok {
			return "range." + name
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("unable to load environment overrides, %w", err)
	}

	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config, %w", err)
	}
	return &cfg, nil
}

func pipelineOptions(cfg *config) (*inflation.Options, error) {
	opt := inflation.NewDefaultOptions()

	parse := func(field, val string, dst *time.Time) error {
		if val == "" {
			return nil
		}
		t, err := time.Parse(monthFormat, val)
		if err != nil {
			return fmt.Errorf("unable to parse %s month %q, %w", field, val, err)
		}
		*dst = t
		return nil
	}
	if err := parse("range.start", cfg.Range.Start, &opt.Start); err != nil {
		return nil, err
	}
	if err := parse("range.end", cfg.Range.End, &opt.End); err != nil {
		return nil, err
	}
	if err := parse("range.cutoff", cfg.Range.Cutoff, &opt.Cutoff); err != nil {
		return nil, err
	}
	return opt, nil
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	reportPath := flag.String("report", "report.html", "path to the rendered HTML report")
	modelsPath := flag.String("models", "", "optional path to write fitted models as JSON")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	opt, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	clientOpt := fred.NewDefaultClientOptions()
	clientOpt.APIKey = cfg.Fred.APIKey
	if cfg.Fred.BaseURL != "" {
		clientOpt.BaseURL = cfg.Fred.BaseURL
	}
	if cfg.Fred.TimeoutSeconds > 0 {
		clientOpt.Timeout = time.Duration(cfg.Fred.TimeoutSeconds) * time.Second
	}
	if cfg.Fred.MaxRetries > 0 {
		clientOpt.MaxRetries = cfg.Fred.MaxRetries
	}
	client, err := fred.NewClient(clientOpt)
	if err != nil {
		return fmt.Errorf("unable to create FRED client, %w", err)
	}

	p, err := inflation.New(client, opt)
	if err != nil {
		return fmt.Errorf("unable to create pipeline, %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	slog.Info("running forecast pipeline",
		"start", opt.Start.Format(monthFormat),
		"end", opt.End.Format(monthFormat),
		"cutoff", opt.Cutoff.Format(monthFormat),
	)
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("pipeline complete",
		"train_rows", res.Boundary,
		"test_rows", len(res.TestRows()),
		"models", len(res.Models),
	)

	reportFile, err := os.Create(*reportPath)
	if err != nil {
		return err
	}
	defer reportFile.Close()
	if err := inflation.WriteReport(reportFile, p.RawDataset(), res); err != nil {
		return err
	}
	slog.Info("wrote report", "path", *reportPath)

	if *modelsPath != "" {
		bytes, err := res.JSON()
		if err != nil {
			return fmt.Errorf("unable to serialize results, %w", err)
		}
		if err := os.WriteFile(*modelsPath, bytes, 0o644); err != nil {
			return err
		}
		slog.Info("wrote fitted models", "path", *modelsPath)
	}

	return inflation.WriteAccuracyTables(os.Stdout, res.Accuracy)
}

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err.Error())
		os.Exit(1)
	}
}
