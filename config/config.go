// Package config parses the command line and the environment of the
// converter.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/dioptra-io/iris-converters/internal/cmd"
	"github.com/dioptra-io/iris-converters/warts"
)

var Version = "UNKNOWN"

// EnvPrefix prefixes the environment variables of the warts writer.
const EnvPrefix = "IRIS_CONVERTERS_"

const (
	FormatAtlas  = "atlas"
	FormatIris   = "iris"
	FormatWarts  = "warts"
	FormatText   = "text"
	FormatView   = "view"
	FormatSQLite = "sqlite"
)

var (
	Inputs  = []string{FormatAtlas, FormatIris, FormatWarts}
	Outputs = []string{FormatAtlas, FormatWarts, FormatText, FormatView, FormatSQLite}
)

const defaultMaxSize = "1GB"

type Config struct {
	From, To      string
	Input, Output string
	MaxSize       uint64
	MeasurementID string
	AgentID       string
	Writer        warts.WriterConfig
	Debug         bool
	LogFile       string
	MetricsFile   string
}

// Parse reads the flags in args. Environment variables from environ, in
// "KEY=value" form, provide the defaults of the warts writer flags.
func Parse(args []string, environ []string) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c.Writer, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}); err != nil {
		return c, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("iris-converters", flag.ContinueOnError)
	fs.Usage = func() { cmd.Usage(Version, Inputs, Outputs) }
	fs.StringVar(&c.From, "from", FormatAtlas, "")
	fs.StringVar(&c.To, "to", FormatAtlas, "")
	fs.StringVar(&c.Input, "i", "", "")
	fs.StringVar(&c.Output, "o", "", "")
	maxSize := fs.String("max-size", defaultMaxSize, "")
	fs.StringVar(&c.MeasurementID, "measurement-uuid", "", "")
	fs.StringVar(&c.AgentID, "agent-uuid", "", "")
	fs.StringVar(&c.Writer.Hostname, "hostname", c.Writer.Hostname, "")
	fs.StringVar(&c.Writer.ListName, "list-name", c.Writer.ListName, "")
	listID := fs.Uint("list-id", uint(c.Writer.ListID), "")
	cycleID := fs.Uint("cycle-id", uint(c.Writer.CycleID), "")
	fs.BoolVar(&c.Debug, "debug", false, "")
	fs.StringVar(&c.LogFile, "log", "", "")
	fs.StringVar(&c.MetricsFile, "metrics", "", "")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() > 0 {
		return c, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	if c.MaxSize, err = humanize.ParseBytes(*maxSize); err != nil {
		return c, fmt.Errorf("invalid max size %q: %w", *maxSize, err)
	}
	if *listID > 1<<32-1 || *cycleID > 1<<32-1 {
		return c, errors.New("list and cycle ids must fit in 32 bits")
	}
	c.Writer.ListID, c.Writer.CycleID = uint32(*listID), uint32(*cycleID)

	if c.MeasurementID, err = identity(c.MeasurementID); err != nil {
		return c, fmt.Errorf("invalid measurement uuid: %w", err)
	}
	if c.AgentID, err = identity(c.AgentID); err != nil {
		return c, fmt.Errorf("invalid agent uuid: %w", err)
	}
	return c, c.validate()
}

// identity validates a UUID flag, drawing a random one when it is empty.
func identity(s string) (string, error) {
	if s == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (c *Config) validate() error {
	if !slices.Contains(Inputs, c.From) {
		return fmt.Errorf("invalid input format: %s", c.From)
	}
	if !slices.Contains(Outputs, c.To) {
		return fmt.Errorf("invalid output format: %s", c.To)
	}
	if c.To == FormatSQLite && c.Output == "" {
		return errors.New("invalid command, \"-to sqlite\" requires an output file (\"-o\")")
	}
	if c.To == FormatView && c.Output != "" {
		return errors.New("invalid command, \"-to view\" cannot write to a file")
	}
	if c.MaxSize == 0 {
		return errors.New("invalid max size")
	}
	return nil
}
