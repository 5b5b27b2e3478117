package cmd

import (
	"fmt"
	"os"
	"strings"
)

func PrintFlagUsage(flag, info string, helptext ...string) {
	fmt.Printf("\t-%s %s\n", flag, info)
	for _, help := range helptext {
		fmt.Printf("\t\t%s\n", help)
	}
}

func PrintFormatUsage(flag, what string, formats []string, def string) {
	quoted := make([]string, len(formats))
	for i, f := range formats {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	PrintFlagUsage(flag, "<format>",
		fmt.Sprintf("%s format (%s)", what, strings.Join(quoted, ", ")),
		"Default: "+def)
}

func PrintInputUsage() {
	PrintFlagUsage("i", "<filename>", "Input file. gzip and zstd files are decompressed.",
		"Default: standard input")
	PrintFlagUsage("max-size", "<size>", "Maximum input size after decompression (format: <num>[KB | MB | GB]).",
		"Default: 1GB")
}

func PrintOutputUsage() {
	PrintFlagUsage("o", "<filename>", "Output file. Required for \"sqlite\".",
		"Default: standard output")
}

func PrintIdentityUsage() {
	PrintFlagUsage("measurement-uuid", "<uuid>", "Measurement of Iris input.",
		"Default: random")
	PrintFlagUsage("agent-uuid", "<uuid>", "Agent of Iris input.",
		"Default: random")
}

func PrintWriterUsage() {
	PrintFlagUsage("hostname", "<name>", "Monitor name written in warts cycles.",
		"Environment: IRIS_CONVERTERS_HOSTNAME",
		"Default: unknown")
	PrintFlagUsage("list-name", "<name>", "List name written in warts files.",
		"Environment: IRIS_CONVERTERS_LIST_NAME",
		"Default: default")
	PrintFlagUsage("list-id", "<id>", "List id written in warts files.",
		"Environment: IRIS_CONVERTERS_LIST_ID",
		"Default: 1")
	PrintFlagUsage("cycle-id", "<id>", "Cycle id written in warts files.",
		"Environment: IRIS_CONVERTERS_CYCLE_ID",
		"Default: 1")
}

func PrintUsageError(s string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", s)
	fmt.Fprintf(os.Stderr, "Please use \"iris-converters -h\" for command line arguments.\n")
}
