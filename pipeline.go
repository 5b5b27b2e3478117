package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dioptra-io/iris-converters/atlas"
	"github.com/dioptra-io/iris-converters/config"
	"github.com/dioptra-io/iris-converters/iris"
	"github.com/dioptra-io/iris-converters/log"
	"github.com/dioptra-io/iris-converters/metric"
	"github.com/dioptra-io/iris-converters/store"
	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/ui/console"
	"github.com/dioptra-io/iris-converters/warts"
)

// Error kinds of the errors_total metric.
const (
	errDecode  = "decode"
	errConvert = "convert"
	errWrite   = "write"
)

// source yields canonical traceroutes until io.EOF. Errors that concern a
// single record are *convertError values; any other error leaves the source
// unusable.
type source interface {
	Next() (trace.Traceroute, error)
}

// sink consumes canonical traceroutes and reports how many records of its
// format each one produced. Records it cannot represent fail with a
// *convertError.
type sink interface {
	Write(t *trace.Traceroute) (int, error)
	Close() error
}

type convertError struct {
	err error
}

func (e *convertError) Error() string { return e.err.Error() }

func (e *convertError) Unwrap() error { return e.err }

func converted(t trace.Traceroute, err error) (trace.Traceroute, error) {
	if err != nil {
		return t, &convertError{err: err}
	}
	return t, nil
}

type atlasSource struct {
	dec *atlas.Decoder
}

func (s *atlasSource) Next() (trace.Traceroute, error) {
	t, err := s.dec.Next()
	if err != nil {
		return trace.Traceroute{}, err
	}
	return converted(atlas.ToTraceroute(&t))
}

type irisSource struct {
	dec             *iris.Decoder
	measurementUUID string
	agentUUID       string
}

func (s *irisSource) Next() (trace.Traceroute, error) {
	t, err := s.dec.Next()
	if err != nil {
		return trace.Traceroute{}, err
	}
	return converted(t.Canonical(s.measurementUUID, s.agentUUID))
}

// wartsSource walks a decoded warts file, so every error is confined to its
// traceroute.
type wartsSource struct {
	r *warts.Reader
}

func (s *wartsSource) Next() (trace.Traceroute, error) {
	t, err := s.r.NextTraceroute()
	if errors.Is(err, io.EOF) {
		return t, err
	}
	return converted(t, err)
}

func newSource(cfg *config.Config, data []byte, logger log.Logger) (source, error) {
	switch cfg.From {
	case config.FormatAtlas:
		return &atlasSource{dec: atlas.NewDecoder(bytes.NewReader(data))}, nil
	case config.FormatIris:
		return &irisSource{
			dec:             iris.NewDecoder(bytes.NewReader(data)),
			measurementUUID: cfg.MeasurementID,
			agentUUID:       cfg.AgentID,
		}, nil
	case config.FormatWarts:
		r, err := warts.NewReader(data, warts.WithReaderLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Debug("Warts input: cycle %d, monitor %s, %d traceroutes, %s", r.CycleID, r.Monitor, r.Len(), r.Mode)
		return &wartsSource{r: r}, nil
	}
	return nil, fmt.Errorf("invalid input format: %s", cfg.From)
}

type atlasSink struct {
	enc *atlas.Encoder
}

func (s *atlasSink) Write(t *trace.Traceroute) (int, error) {
	results, err := atlas.FromTraceroute(t)
	if err != nil {
		return 0, &convertError{err: err}
	}
	for i := range results {
		if err := s.enc.Encode(&results[i]); err != nil {
			return i, err
		}
	}
	return len(results), nil
}

func (s *atlasSink) Close() error { return nil }

type wartsSink struct {
	w *warts.Writer
}

func (s *wartsSink) Write(t *trace.Traceroute) (int, error) {
	n := s.w.Records()
	err := s.w.WriteTraceroute(t)
	var perr *trace.UnknownProtocolError
	if errors.As(err, &perr) {
		err = &convertError{err: err}
	}
	return s.w.Records() - n, err
}

func (s *wartsSink) Close() error { return s.w.WriteEpilogue() }

type textSink struct {
	w *console.Writer
}

func (s *textSink) Write(t *trace.Traceroute) (int, error) {
	if err := s.w.Write(t); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *textSink) Close() error { return nil }

type sqliteSink struct {
	ctx   context.Context
	store *store.Store
}

func (s *sqliteSink) Write(t *trace.Traceroute) (int, error) {
	if err := s.store.InsertTraceroute(s.ctx, t); err != nil {
		return 0, err
	}
	return t.ReplyCount(), nil
}

func (s *sqliteSink) Close() error { return s.store.Close() }

// viewSink hands traceroutes to the interactive viewer.
type viewSink struct {
	add func(trace.Traceroute)
}

func (s *viewSink) Write(t *trace.Traceroute) (int, error) {
	s.add(*t)
	return 1, nil
}

func (s *viewSink) Close() error { return nil }

// newSink builds the sink of the file formats. The view output is built by
// the caller, which owns the terminal.
func newSink(ctx context.Context, cfg *config.Config, w io.Writer, logger log.Logger) (sink, error) {
	switch cfg.To {
	case config.FormatAtlas:
		return &atlasSink{enc: atlas.NewEncoder(w)}, nil
	case config.FormatWarts:
		ww := warts.NewWriter(w, cfg.Writer, warts.WithWriterLogger(logger))
		if err := ww.WritePreamble(); err != nil {
			return nil, err
		}
		return &wartsSink{w: ww}, nil
	case config.FormatText:
		return &textSink{w: console.NewWriter(w)}, nil
	case config.FormatSQLite:
		st, err := store.Open(ctx, cfg.Output)
		if err != nil {
			return nil, err
		}
		return &sqliteSink{ctx: ctx, store: st}, nil
	}
	return nil, fmt.Errorf("invalid output format: %s", cfg.To)
}

type pipeline struct {
	from, to string
	logger   log.Logger
	metrics  *metric.Metrics
}

// convert drains src into dst. Records that fail to decode or convert are
// logged and skipped; a decode error that leaves the stream unusable and any
// write error stop the conversion.
func (p *pipeline) convert(ctx context.Context, src source, dst sink) error {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if !isConvertError(err) {
				p.metrics.Error(errDecode)
				return fmt.Errorf("record %d: %w", n, err)
			}
			p.metrics.Error(errConvert)
			p.logger.Error("Skipping record %d: %v", n, err)
			continue
		}
		p.metrics.RecordsRead(p.from, 1)
		p.metrics.Replies(p.from, t.ReplyCount())

		written, err := dst.Write(&t)
		p.metrics.RecordsWritten(p.to, written)
		if err != nil {
			if isConvertError(err) {
				p.metrics.Error(errConvert)
				p.logger.Error("Skipping record %d: %v", n, err)
				continue
			}
			p.metrics.Error(errWrite)
			return fmt.Errorf("record %d: %w", n, err)
		}
	}
}

// convertIrisAtlas maps Iris rows straight to Atlas results, keeping the
// Iris reply details that the canonical model drops.
func (p *pipeline) convertIrisAtlas(ctx context.Context, dec *iris.Decoder, enc *atlas.Encoder, measurementUUID, agentUUID string) error {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			p.metrics.Error(errDecode)
			return fmt.Errorf("record %d: %w", n, err)
		}
		p.metrics.RecordsRead(p.from, 1)
		p.metrics.Replies(p.from, len(t.Replies))

		a, err := t.Atlas(measurementUUID, agentUUID)
		if err != nil {
			p.metrics.Error(errConvert)
			p.logger.Error("Skipping record %d: %v", n, err)
			continue
		}
		if err := enc.Encode(&a); err != nil {
			p.metrics.Error(errWrite)
			return fmt.Errorf("record %d: %w", n, err)
		}
		p.metrics.RecordsWritten(p.to, 1)
	}
}

func isConvertError(err error) bool {
	var cerr *convertError
	return errors.As(err, &cerr)
}
