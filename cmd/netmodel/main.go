// netmodel builds and inspects compression models for netcode streams.
//
//	netmodel gen --out model.bin 'captures/**/*.capture'
//	netmodel inspect model.bin
//	netmodel default --out model.bin
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/egonelbre/exp-netcompress/capture"
	"github.com/egonelbre/exp-netcompress/huffman"
	"github.com/egonelbre/exp-netcompress/netcode"
)

const configKey = "config"

func main() {
	app := newApp(logrus.StandardLogger())
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("netmodel failed")
		os.Exit(1)
	}
}

func newApp(log *logrus.Logger) *cli.App {
	app := cli.NewApp()
	app.Name = "netmodel"
	app.Usage = "build and inspect netcode compression models"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = []cli.Flag{configFlag, logFormatFlag, logVerbosityFlag}

	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		if err := setupLogging(log, cfg.Logging); err != nil {
			return err
		}
		ctx.App.Metadata = map[string]interface{}{configKey: &cfg}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "gen",
			Usage:     "propose a model from capture dumps",
			ArgsUsage: "PATTERN...",
			Flags:     []cli.Flag{outFlag, baseFlag, maxCodeLengthFlag, minSamplesFlag},
			Action: func(ctx *cli.Context) error {
				cfg := ctx.App.Metadata[configKey].(*Config).Gen
				applyGenFlags(ctx, &cfg)
				return gen(ctx, log, cfg)
			},
		},
		{
			Name:      "inspect",
			Usage:     "print the code lengths and codes of a model blob",
			ArgsUsage: "FILE",
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() != 1 {
					return errors.New("inspect expects one model file")
				}
				blob, err := os.ReadFile(ctx.Args().First())
				if err != nil {
					return err
				}
				model, err := netcode.ParseModel(blob)
				if err != nil {
					return err
				}
				return inspect(ctx.App.Writer, model)
			},
		},
		{
			Name:  "default",
			Usage: "write the built-in model blob",
			Flags: []cli.Flag{outFlag},
			Action: func(ctx *cli.Context) error {
				return writeOutput(ctx, netcode.DefaultModelBlob())
			},
		},
	}
	return app
}

func gen(ctx *cli.Context, log logrus.FieldLogger, cfg GenConfig) error {
	if ctx.NArg() == 0 {
		return errors.New("gen expects at least one capture pattern")
	}

	base := netcode.DefaultModel()
	if cfg.Base != "" {
		blob, err := os.ReadFile(cfg.Base)
		if err != nil {
			return err
		}
		base, err = netcode.ParseModel(blob)
		if err != nil {
			return fmt.Errorf("base model %s: %w", cfg.Base, err)
		}
	}

	var merged *capture.Capture
	for _, pattern := range ctx.Args() {
		files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if len(files) == 0 {
			log.WithField("pattern", pattern).Warn("no captures match")
		}
		for _, file := range files {
			c, err := readCaptureFile(file)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"file":     file,
				"session":  c.Session,
				"contexts": len(c.Contexts),
			}).Debug("read capture")

			if merged == nil {
				merged = c
				continue
			}
			if err := merged.Merge(c); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
		}
	}
	if merged == nil {
		return errors.New("no captures found")
	}

	analyzer := capture.Analyzer{
		MaxCodeLength: cfg.MaxCodeLength,
		MinSamples:    cfg.MinSamples,
		Log:           log,
	}
	spec, report, err := analyzer.Propose(merged, base)
	if err != nil {
		return err
	}
	for _, r := range report.Contexts {
		log.WithFields(logrus.Fields{
			"context":  r.Context,
			"samples":  r.Samples,
			"current":  r.Current,
			"proposed": r.Proposed,
			"gamma":    r.Gamma,
			"raw":      r.Raw,
			"override": r.Override,
		}).Info("context cost")
	}

	blob, err := spec.MarshalBinary()
	if err != nil {
		return err
	}
	return writeOutput(ctx, blob)
}

func readCaptureFile(path string) (*capture.Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := capture.ReadCapture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func writeOutput(ctx *cli.Context, blob []byte) error {
	out := ctx.String(outFlag.Name)
	if out == "-" {
		_, err := ctx.App.Writer.Write(blob)
		return err
	}
	return os.WriteFile(out, blob, 0o644)
}

func inspect(w io.Writer, model *netcode.Model) error {
	spec := model.Spec()
	fmt.Fprintf(w, "fingerprint %016x\n", model.Fingerprint())
	fmt.Fprintf(w, "default\n")
	printLengths(w, spec.Default)
	for _, override := range spec.Overrides {
		fmt.Fprintf(w, "context %d\n", override.Context)
		printLengths(w, override.Lengths)
	}
	return nil
}

// printLengths lists every symbol with its canonical code, most significant
// bit first.
func printLengths(w io.Writer, lengths [netcode.AlphabetSize]uint8) {
	for symbol, code := range huffman.Codes(lengths[:]) {
		if code.Len == 0 {
			fmt.Fprintf(w, "  %2d  -\n", symbol)
			continue
		}
		fmt.Fprintf(w, "  %2d  %d  %0*b\n", symbol, code.Len, int(code.Len), huffman.Reverse(code.Bits, int(code.Len)))
	}
}
