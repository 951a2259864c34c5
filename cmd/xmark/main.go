package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/build"
	"github.com/Sriram-PR/xmark/pkg/config"
	"github.com/Sriram-PR/xmark/pkg/models"
	"github.com/Sriram-PR/xmark/pkg/serve"
	"github.com/Sriram-PR/xmark/pkg/summary"
	"github.com/Sriram-PR/xmark/pkg/utils"
	"github.com/Sriram-PR/xmark/pkg/watch"
)

const version = "0.4.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "toc":
		runToc(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-books":
		runListBooks(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("xmark %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `xmark - Build HTML books from SUMMARY.md tables of contents

Usage:
  xmark <command> [options]

Commands:
  build       Build books into the output directory
  toc         Print a book's parsed table of contents
  validate    Validate the configuration and every SUMMARY.md
  list-books  List configured books
  serve       Preview the output directory over HTTP
  watch       Rebuild books whenever their sources change
  mcp-server  Start MCP server for AI tool integration
  version     Show version info

Run 'xmark <command> -h' for command-specific help.`)
}

// loadConfig loads the config file and returns it with the project dir,
// the directory the file lives in.
func loadConfig(path string) (*config.AppConfig, string, error) {
	appCfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: resolving '%s': %w", utils.ErrFilesystem, path, err)
	}
	return appCfg, filepath.Dir(abs), nil
}

// loadAndValidateConfig loads the config, validates it and logs warnings.
func loadAndValidateConfig(path string, log *logrus.Logger) (*config.AppConfig, string, error) {
	log.Infof("Loading configuration from %s", path)
	appCfg, projectDir, err := loadConfig(path)
	if err != nil {
		return nil, "", err
	}
	warnings, err := appCfg.Validate()
	if err != nil {
		return nil, "", err
	}
	for _, w := range warnings {
		log.Warn(w)
	}
	return appCfg, projectDir, nil
}

// setupLogger creates a configured logrus.Logger writing to out.
func setupLogger(logLevelStr string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
		log.Debugf("Setting log level to: %s", level.String())
	}
	return log
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Warnf("Received signal %v, initiating graceful shutdown...", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runBuild handles the build subcommand
func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")
	books := fs.String("books", "", "Comma-separated book names (default: all books)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark build [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel, os.Stderr)
	ctx, cancel := signalContext(log)
	defer cancel()

	os.Exit(doBuild(ctx, *configFile, splitList(*books), log, os.Stdout, os.Stderr))
}

// doBuild builds the books and prints one line per book.
// Returns exit code (0 = every book succeeded, 1 = otherwise).
func doBuild(ctx context.Context, configPath string, books []string, log *logrus.Logger, stdout, stderr io.Writer) int {
	appCfg, projectDir, err := loadAndValidateConfig(configPath, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	orch, err := build.NewOrchestrator(appCfg, projectDir, log.WithField("component", "cli"))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	results, err := orch.Run(ctx, books)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return printResults(results, stdout, stderr)
}

// printResults prints one line per book and returns 1 if any book did not
// fully succeed.
func printResults(results []build.BookResult, stdout, stderr io.Writer) int {
	exitCode := 0
	for _, r := range results {
		fmt.Fprintf(stdout, "%-8s %s (%d pages", strings.ToUpper(r.Status.String()), r.Book, r.PagesRendered)
		if r.PagesFailed > 0 {
			fmt.Fprintf(stdout, ", %d failed", r.PagesFailed)
		}
		fmt.Fprintln(stdout, ")")
		if r.Error != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", r.Book, r.Error)
		}
		if r.Status != models.BookStatusSuccess {
			exitCode = 1
		}
	}
	return exitCode
}

// runToc handles the toc subcommand
func runToc(args []string) {
	fs := flag.NewFlagSet("toc", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")
	book := fs.String("book", "", "Book name from config")
	summaryFile := fs.String("summary", "", "Path to a SUMMARY.md (no config needed)")
	logLevel := fs.String("loglevel", "warn", "Log level (trace, debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark toc (-book <name> | -summary <path>) [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel, os.Stderr)
	os.Exit(doToc(*configFile, *book, *summaryFile, log, os.Stdout, os.Stderr))
}

// doToc prints the table of contents of a book, or of a SUMMARY.md file.
func doToc(configPath, bookName, summaryPath string, log *logrus.Logger, stdout, stderr io.Writer) int {
	var bookDir string
	switch {
	case summaryPath != "":
		bookDir = filepath.Dir(summaryPath)
		if filepath.Base(summaryPath) != build.SummaryFilename {
			fmt.Fprintf(stderr, "Error: expected a %s file, got '%s'\n", build.SummaryFilename, summaryPath)
			return 1
		}
	case bookName != "":
		appCfg, projectDir, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		book, ok := appCfg.FindBook(bookName)
		if !ok {
			fmt.Fprintf(stderr, "Error: book '%s' not found in config\n", bookName)
			return 1
		}
		bookDir = config.BookDir(projectDir, book)
	default:
		fmt.Fprintln(stderr, "Error: one of -book or -summary is required")
		return 1
	}

	s, err := build.LoadSummary(bookDir, log.WithField("component", "cli"))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	relativizeLocations(s, bookDir)

	if err := s.WriteTree(stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// relativizeLocations undoes location resolution for display.
func relativizeLocations(s *summary.Summary, bookDir string) {
	s.MapChapters(func(c *summary.Chapter) {
		if c.IsDraft() {
			return
		}
		if rel, err := filepath.Rel(bookDir, c.Location); err == nil {
			c.Location = filepath.ToSlash(rel)
		}
	})
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate validates the config and parses every book's SUMMARY.md.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	appCfg, projectDir, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}

	quiet := setupLogger("panic", io.Discard).WithField("component", "cli")
	hasError := false
	for _, book := range appCfg.Books {
		s, err := build.LoadSummary(config.BookDir(projectDir, book), quiet)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", book.Name, err)
			hasError = true
			continue
		}
		fmt.Fprintf(stdout, "OK: [%s] %s\n", book.Name, s.Title)
	}
	if hasError {
		return 1
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// runListBooks handles the list-books subcommand
func runListBooks(args []string) {
	fs := flag.NewFlagSet("list-books", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark list-books [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doListBooks(*configFile, os.Stdout, os.Stderr))
}

// doListBooks lists books in config order.
func doListBooks(configPath string, stdout, stderr io.Writer) int {
	appCfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Books in %s:\n\n", configPath)
	for _, book := range appCfg.Books {
		fmt.Fprintf(stdout, "  %s\n", book.Name)
		fmt.Fprintf(stdout, "    Location: %s\n", book.Location)
		if book.CreateMissing != nil {
			fmt.Fprintf(stdout, "    Create Missing: %t\n", *book.CreateMissing)
		}
		fmt.Fprintln(stdout)
	}
	return 0
}

// runServe handles the serve subcommand
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")
	addr := fs.String("addr", "localhost:3000", "Listen address")
	buildFirst := fs.Bool("build", true, "Build all books before serving")
	watchSources := fs.Bool("watch", false, "Rebuild changed books while serving")
	interval := fs.String("interval", "1s", "Source polling interval with -watch")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark serve [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel, os.Stderr)
	ctx, cancel := signalContext(log)
	defer cancel()

	if *watchSources {
		every, err := watch.ParseInterval(*interval)
		if err != nil {
			log.Fatalf("Invalid -interval: %v", err)
		}
		go doWatch(ctx, *configFile, nil, every, log, os.Stdout, os.Stderr)
	} else if *buildFirst {
		// A partially built project is still worth previewing.
		doBuild(ctx, *configFile, nil, log, os.Stdout, os.Stderr)
	}

	appCfg, projectDir, err := loadAndValidateConfig(*configFile, log)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	srv := serve.NewServer(appCfg.Dirs(projectDir), log.WithField("component", "cli"))
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		log.Fatalf("Preview server error: %v", err)
	}
}
