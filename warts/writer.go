package warts

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/dioptra-io/iris-converters/log"
	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/warts/wire"
)

// WriterConfig holds the list and cycle metadata of written files.
type WriterConfig struct {
	Hostname string `env:"HOSTNAME" envDefault:"unknown"`
	ListName string `env:"LIST_NAME" envDefault:"default"`
	ListID   uint32 `env:"LIST_ID" envDefault:"1"`
	CycleID  uint32 `env:"CYCLE_ID" envDefault:"1"`
}

type WriterOption func(*Writer)

// WithClock sets the source of the cycle start and stop times.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

func WithWriterLogger(l log.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = l
	}
}

// Writer writes canonical traceroutes as a warts file. Callers write the
// preamble once, then any number of traceroutes, then the epilogue. Errors
// leave the output partial. A Writer is not safe for concurrent use.
type Writer struct {
	w       io.Writer
	cfg     WriterConfig
	now     func() time.Time
	logger  log.Logger
	records int
}

func NewWriter(w io.Writer, cfg WriterConfig, opts ...WriterOption) *Writer {
	wr := &Writer{w: w, cfg: cfg, now: time.Now, logger: log.Nop}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

// Records returns the number of traceroute objects written so far.
func (w *Writer) Records() int {
	return w.records
}

// WritePreamble writes the list and cycle start objects.
func (w *Writer) WritePreamble() error {
	list := &wire.List{
		ListID:      w.cfg.ListID,
		ListIDHuman: w.cfg.ListID,
		Name:        w.cfg.ListName,
		MonitorName: w.cfg.Hostname,
	}
	if err := w.write(list); err != nil {
		return err
	}
	return w.write(&wire.Cycle{
		CycleID:      w.cfg.CycleID,
		ListID:       w.cfg.ListID,
		CycleIDHuman: w.cfg.CycleID,
		StartTime:    wire.TimevalFromTime(w.now()).Sec,
		Hostname:     w.cfg.Hostname,
	})
}

// WriteTraceroute writes one traceroute object per flow of t.
func (w *Writer) WriteTraceroute(t *trace.Traceroute) error {
	tt, err := TraceType(t.Protocol)
	if err != nil {
		return err
	}
	for i := range t.Flows {
		rec, err := fromCanonical(t, &t.Flows[i], tt, w.cfg.ListID, w.cfg.CycleID)
		if err != nil {
			return errors.Wrapf(err, "WriteTraceroute: flow %d", i)
		}
		if err := w.write(rec); err != nil {
			return err
		}
		w.records++
	}
	w.logger.Debug("wrote %d flows of %s to %s", len(t.Flows), t.SrcAddr, t.DstAddr)
	return nil
}

// WriteEpilogue writes the cycle stop object.
func (w *Writer) WriteEpilogue() error {
	return w.write(&wire.CycleStop{
		CycleID:  w.cfg.CycleID,
		StopTime: wire.TimevalFromTime(w.now()).Sec,
	})
}

func (w *Writer) write(obj wire.Object) error {
	b, err := wire.Marshal(obj)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return errors.Wrapf(err, "write %s", obj.Type())
	}
	return nil
}
