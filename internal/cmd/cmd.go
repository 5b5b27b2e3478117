package cmd

import "fmt"

// Usage prints the command-line usage text
func Usage(version string, inputs, outputs []string) {
	fmt.Println("\niris-converters - Convert traceroutes between Atlas, Iris and warts formats.")
	fmt.Println("Version: " + version)
	fmt.Println("Usage: iris-converters -from <format> -to <format> [-i <input>] [-o <output>]")

	fmt.Println("\nCommon Parameters")
	fmt.Println("================================================================================")
	PrintFlagUsage("h", "", "Help")
	PrintFormatUsage("from", "Input", inputs, inputs[0])
	PrintFormatUsage("to", "Output", outputs, outputs[0])
	PrintInputUsage()
	PrintOutputUsage()
	PrintFlagUsage("debug", "", "Enable debug information in logging output.")
	PrintFlagUsage("log", "<filename>", "Also append JSON log lines to <filename>.")
	PrintFlagUsage("metrics", "<filename>", "Write Prometheus metrics to <filename> when done.")

	fmt.Println("\nIris Input")
	fmt.Println("================================================================================")
	PrintIdentityUsage()

	fmt.Println("\nWarts Output")
	fmt.Println("================================================================================")
	PrintWriterUsage()
}
