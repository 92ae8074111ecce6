package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/ironsheep/omr-tools-mcp/internal/omr"
	"github.com/ironsheep/omr-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version, --help and the process subcommand
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		case "process":
			os.Exit(runProcess(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("OMR_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("OMR MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := loadConfig(os.Getenv("OMR_MCP_CONFIG"), os.Getenv("OMR_MCP_BATCH_CONCURRENCY"))
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	proc, err := omr.New(cfg, omr.WithDebug(debug))
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv := server.New(proc)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "omr-tools-mcp - MCP server for multiple-choice answer sheets")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  omr-mcp                       Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  omr-mcp process <file> [opts] Process one sheet and print the result as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Process options:")
	fmt.Fprintln(w, "  -questions N     Number of questions on the sheet (required)")
	fmt.Fprintln(w, "  -choices K       Choices per question (default from config, 4)")
	fmt.Fprintln(w, "  -config FILE     YAML configuration file")
	fmt.Fprintln(w, "  -debug           Print stage diagnostics instead of answers")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  OMR_MCP_LOG_LEVEL=debug        Enable debug logging")
	fmt.Fprintln(w, "  OMR_MCP_CONFIG=<file>          YAML configuration file")
	fmt.Fprintln(w, "  OMR_MCP_BATCH_CONCURRENCY=<n>  Sheets processed in parallel by omr_process_batch")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "In server mode it communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}

// loadConfig builds the configuration from an optional YAML file and an
// optional batch concurrency override.
func loadConfig(path, concurrency string) (omr.Config, error) {
	cfg := omr.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = omr.LoadConfig(path); err != nil {
			return omr.Config{}, err
		}
	}
	if concurrency != "" {
		n, err := strconv.Atoi(concurrency)
		if err != nil || n < 1 {
			return omr.Config{}, fmt.Errorf("invalid OMR_MCP_BATCH_CONCURRENCY %q", concurrency)
		}
		cfg.BatchConcurrency = n
	}
	return cfg, nil
}

// runProcess implements the process subcommand and returns the exit code:
// 0 on success, 1 when the sheet could not be processed, 2 on usage errors.
func runProcess(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(stderr)
	questions := fs.Int("questions", 0, "number of questions on the sheet")
	choices := fs.Int("choices", 0, "choices per question")
	configPath := fs.String("config", os.Getenv("OMR_MCP_CONFIG"), "YAML configuration file")
	debug := fs.Bool("debug", false, "print stage diagnostics instead of answers")

	// flags may come before or after the file argument
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return 2
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) != 1 {
		fmt.Fprintln(stderr, "usage: omr-mcp process <file> -questions N [-choices K] [-config FILE] [-debug]")
		return 2
	}
	if *questions <= 0 {
		fmt.Fprintln(stderr, "-questions must be a positive number")
		return 2
	}

	cfg, err := loadConfig(*configPath, "")
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	if *choices == 0 {
		*choices = cfg.DefaultChoices
	}

	logger := log.New(stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
	proc, err := omr.New(cfg, omr.WithLogger(logger), omr.WithDebug(os.Getenv("OMR_MCP_LOG_LEVEL") == "debug"))
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}

	var (
		out interface{}
		ok  bool
	)
	if *debug {
		report := proc.Debug(positional[0], *questions, *choices, false)
		out, ok = report, report.Error == ""
	} else {
		res := proc.Process(positional[0], *questions, *choices)
		out, ok = res, res.Success
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "Failed to encode result: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(data))
	if !ok {
		return 1
	}
	return 0
}
