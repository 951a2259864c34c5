package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/build"
	"github.com/Sriram-PR/xmark/pkg/config"
	"github.com/Sriram-PR/xmark/pkg/watch"
)

// runWatch handles the watch subcommand
func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configFile := fs.String("config", config.DefaultFilename, "Path to config file")
	books := fs.String("books", "", "Comma-separated book names (default: all books)")
	interval := fs.String("interval", "1s", "Source polling interval (e.g. 500ms, 2s, 1m)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmark watch [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	every, err := watch.ParseInterval(*interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(*logLevel, os.Stderr)
	ctx, cancel := signalContext(log)
	defer cancel()

	os.Exit(doWatch(ctx, *configFile, splitList(*books), every, log, os.Stdout, os.Stderr))
}

// doWatch rebuilds changed books until ctx is done, printing the results of
// every round. Returns 1 only when watching could not start.
func doWatch(ctx context.Context, configPath string, books []string, interval time.Duration,
	log *logrus.Logger, stdout, stderr io.Writer) int {
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

	scheduler := watch.NewScheduler(appCfg, projectDir, books, interval, orch, log.WithField("component", "cli"))
	scheduler.OnBuild = func(results []build.BookResult) {
		printResults(results, stdout, stderr)
	}
	if err := scheduler.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
