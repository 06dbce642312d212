package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"nickandperla.net/epistle/internal/config"
	"nickandperla.net/epistle/pkg/epistle"
)

// debounceDuration coalesces the bursts of events editors produce on save.
const debounceDuration = 200 * time.Millisecond

// watchFile runs path once, then again each time it is written. Every run
// starts from a fresh runtime.
func watchFile(path string, cfg *config.Config, stats bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory so editors that replace the file are seen.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	runOnce(path, cfg, stats)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	var debounce <-chan time.Time
	for {
		select {
		case <-sigc:
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Name != abs {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				debounce = time.After(debounceDuration)
			}

		case <-debounce:
			debounce = nil
			fmt.Fprintf(os.Stderr, "--- %s changed, re-running\n", path)
			runOnce(path, cfg, stats)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

func runOnce(path string, cfg *config.Config, stats bool) {
	runtime, err := epistle.New(
		epistle.WithConfig(cfg),
		epistle.WithLogger(newLogger(cfg, os.Stderr)),
		epistle.WithOutput(os.Stdout),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	defer runtime.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading file: %v\n", err)
		return
	}
	err = runtime.Run(string(data), path)
	if stats {
		printStats(os.Stderr, runtime.Stats())
		if jerr := printJournalTotals(os.Stderr, runtime.Journal()); jerr != nil {
			fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", jerr)
		}
	}
	if err != nil {
		report(os.Stderr, string(data), err)
	}
}
