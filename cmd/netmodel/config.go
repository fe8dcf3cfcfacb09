package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
	"sigs.k8s.io/yaml"

	"github.com/egonelbre/exp-netcompress/netcode"
)

// Config is the netmodel configuration file.
type Config struct {
	Logging LoggingConfig `json:"log"`
	Gen     GenConfig     `json:"gen"`
}

type LoggingConfig struct {
	// Format is text or json.
	Format string `json:"format"`
	// Verbosity goes from 0 (fatal) to 5 (trace).
	Verbosity int `json:"verbosity"`
}

type GenConfig struct {
	// Base is a model blob to start from, the built-in model when empty.
	Base          string `json:"base,omitempty"`
	MaxCodeLength int    `json:"maxCodeLength"`
	MinSamples    uint64 `json:"minSamples"`
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Format:    "text",
			Verbosity: 3,
		},
		Gen: GenConfig{
			MaxCodeLength: netcode.MaxCodeLength,
			MinSamples:    256,
		},
	}
}

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML configuration file",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log.format",
		Usage: "Log output format (text|json)",
		Value: "text",
	}
	logVerbosityFlag = cli.IntFlag{
		Name:  "log.verbosity",
		Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
		Value: 3,
	}

	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Output file, - for standard output",
		Value: "-",
	}
	baseFlag = cli.StringFlag{
		Name:  "base",
		Usage: "Model blob the captures were recorded with",
	}
	maxCodeLengthFlag = cli.IntFlag{
		Name:  "max-code-length",
		Usage: "Longest code the proposed model may use",
		Value: netcode.MaxCodeLength,
	}
	minSamplesFlag = cli.Uint64Flag{
		Name:  "min-samples",
		Usage: "Samples a context needs to get its own code lengths",
		Value: 256,
	}
)

// makeConfig merges defaults, the config file and global flag overrides.
func makeConfig(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String(configFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", file, err)
		}
	}

	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Logging.Format = ctx.String(logFormatFlag.Name)
	}
	if ctx.IsSet(logVerbosityFlag.Name) {
		cfg.Logging.Verbosity = ctx.Int(logVerbosityFlag.Name)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// applyGenFlags overrides cfg with the flags given to the gen command.
func applyGenFlags(ctx *cli.Context, cfg *GenConfig) {
	if ctx.IsSet(baseFlag.Name) {
		cfg.Base = ctx.String(baseFlag.Name)
	}
	if ctx.IsSet(maxCodeLengthFlag.Name) {
		cfg.MaxCodeLength = ctx.Int(maxCodeLengthFlag.Name)
	}
	if ctx.IsSet(minSamplesFlag.Name) {
		cfg.MinSamples = ctx.Uint64(minSamplesFlag.Name)
	}
}

func setupLogging(log *logrus.Logger, cfg LoggingConfig) error {
	switch cfg.Format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.Verbosity < 0 || cfg.Verbosity > 5 {
		return fmt.Errorf("log verbosity %d out of range", cfg.Verbosity)
	}
	log.SetLevel(logrus.Level(cfg.Verbosity + 1))
	return nil
}
