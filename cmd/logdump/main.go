// Command logdump opens a log, runs the parse-and-cache pipeline over
// every message, and prints a per-thread frame count summary. It exists
// to exercise the logreader library end to end, not as a general-purpose
// CLI front-end (out of scope per spec.md §1).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/badger-rl/logreader"
)

func main() {
	workers := flag.Int("workers", 0, "parse-and-cache worker count (0 = runtime.NumCPU())")
	continueOnError := flag.Bool("continue-on-error", false, "skip bounded-decode errors instead of aborting")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: logdump [flags] <path-to-log>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *workers, *continueOnError); err != nil {
		fmt.Fprintln(os.Stderr, "logdump:", err)
		os.Exit(1)
	}
}

func run(path string, workers int, continueOnError bool) error {
	opts := []logreader.Option{logreader.WithContinueOnError(continueOnError)}
	if workers > 0 {
		opts = append(opts, logreader.WithWorkerCount(workers))
	}

	log, err := logreader.Open(path, opts...)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer log.Close()

	result, err := log.ParseAll(context.Background())
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	fmt.Printf("decoded %d messages (%d cache hits, %d skipped)\n", result.Decoded, result.CacheHits, result.Skipped)

	frames, err := log.Frames()
	if err != nil {
		return fmt.Errorf("frames: %w", err)
	}

	counts := make(map[string]int)
	for i := 0; i < frames.Len(); i++ {
		frames.SetIndex(i)
		counts[frames.ThreadName()]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-16s %d frames\n", name, counts[name])
	}
	return nil
}
