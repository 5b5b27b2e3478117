// iris-converters converts traceroutes between the RIPE Atlas JSON, Iris and
// scamper warts formats.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/dioptra-io/iris-converters/atlas"
	"github.com/dioptra-io/iris-converters/config"
	"github.com/dioptra-io/iris-converters/internal/cmd"
	"github.com/dioptra-io/iris-converters/iris"
	"github.com/dioptra-io/iris-converters/log"
	"github.com/dioptra-io/iris-converters/metric"
	"github.com/dioptra-io/iris-converters/ui"
)

const logBufferSize = 64

func main() {
	ui.Version = config.Version

	cfg, err := config.Parse(os.Args[1:], os.Environ())
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		cmd.PrintUsageError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, &cfg)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	ll := log.LevelInfo
	if cfg.Debug {
		ll = log.LevelDebug
	}

	var viewer *ui.Viewer
	var loggers []log.Logger
	if cfg.To == config.FormatView {
		if viewer, err = ui.NewViewer(); err != nil {
			return err
		}
		defer viewer.Close()
		loggers = append(loggers, log.NewTuiLogger(ll, viewer))
	} else {
		text := log.NewTextLogger(os.Stderr, ll)
		text.Init(ctx)
		defer text.Close()
		loggers = append(loggers, text)
	}
	if cfg.LogFile != "" {
		jl, err := log.NewJSONLogger(cfg.LogFile, ll, logBufferSize)
		if err != nil {
			return err
		}
		jl.Init(ctx)
		defer jl.Close()
		loggers = append(loggers, jl)
	}
	logger := log.NewAggregateLogger(loggers...)

	metrics := metric.New()
	if cfg.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
				logger.Error("Could not write metrics to %s: %v", cfg.MetricsFile, werr)
			}
		}()
	}

	in, err := loadInput(cfg.Input, cfg.MaxSize)
	if err != nil {
		metrics.Error(errDecode)
		return err
	}
	// decoded warts objects may alias the mapped input
	defer in.release()
	metrics.InputBytes(int64(len(in.data)))
	logger.Debug("Loaded %s of %s input", humanize.Bytes(uint64(len(in.data))), cfg.From)

	p := &pipeline{from: cfg.From, to: cfg.To, logger: logger, metrics: metrics}
	if viewer != nil {
		return view(ctx, cfg, p, in.data, viewer)
	}

	out := io.Writer(os.Stdout)
	if cfg.Output != "" && cfg.To != config.FormatSQLite {
		f, ferr := os.Create(cfg.Output)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}
	bw := bufio.NewWriter(out)
	defer func() {
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}()

	if cfg.From == config.FormatIris && cfg.To == config.FormatAtlas {
		dec := iris.NewDecoder(bytes.NewReader(in.data))
		return p.convertIrisAtlas(ctx, dec, atlas.NewEncoder(bw), cfg.MeasurementID, cfg.AgentID)
	}

	src, err := newSource(cfg, in.data, logger)
	if err != nil {
		metrics.Error(errDecode)
		return err
	}
	dst, err := newSink(ctx, cfg, bw, logger)
	if err != nil {
		metrics.Error(errWrite)
		return err
	}
	if err := p.convert(ctx, src, dst); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// view converts in the background while the viewer owns the terminal. The
// viewer stays up after the conversion until the user quits.
func view(ctx context.Context, cfg *config.Config, p *pipeline, data []byte, viewer *ui.Viewer) error {
	src, err := newSource(cfg, data, p.logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.convert(ctx, src, &viewSink{add: viewer.Add}); err != nil {
			if !errors.Is(err, context.Canceled) {
				p.logger.Error("Conversion stopped: %v", err)
			}
			return
		}
		p.logger.Info("Conversion done")
	}()

	err = viewer.Run(ctx)
	cancel()
	<-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
