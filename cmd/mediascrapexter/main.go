// cmd/mediascrapexter/main.go
package main

import (
	"fmt"
	"os"

	"github.com/valpere/MediaScrapexter/internal/config"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// main handles CLI arguments and routes to the appropriate command
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		if err := runCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: mediascrapexter validate <config.yaml>\n")
			os.Exit(1)
		}
		if _, err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file '%s' is valid\n", os.Args[2])

	case "template":
		if err := config.WriteTemplate(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// printUsage displays help information
func printUsage() {
	fmt.Println("MediaScrapexter - Highest-Fidelity Media Asset Extractor")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mediascrapexter run [options] <url>...    Extract media from the given pages")
	fmt.Println("  mediascrapexter run -input pages.txt      Extract media from a page list file")
	fmt.Println("  mediascrapexter validate <config.yaml>    Validate configuration file")
	fmt.Println("  mediascrapexter template                  Print a configuration template")
	fmt.Println("  mediascrapexter version                   Show version information")
	fmt.Println("  mediascrapexter help                      Show this help message")
	fmt.Println()
	fmt.Println("Run options:")
	fmt.Println("  -config <file>    Configuration file (YAML)")
	fmt.Println("  -input <file>     Page list: one URL per line, optionally 'URL|name'")
	fmt.Println("  -output <dir>     Output directory (overrides configuration)")
	fmt.Println("  -render           Fetch pages through a headless browser")
	fmt.Println("  -verbose          Enable debug logging")
}

// printVersion displays version information
func printVersion() {
	fmt.Printf("MediaScrapexter %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
