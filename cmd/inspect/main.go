// Command inspect analyzes a single banknote image file and prints the
// report as JSON. Useful for offline checks without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go-currency-guardian/internal/config"
	"go-currency-guardian/internal/container"
	"go-currency-guardian/internal/service"
	"go-currency-guardian/internal/signal"
)

func main() {
	var (
		threshold    = flag.Float64("threshold", 8.0, "decision cutoff on the fused score")
		signals      = flag.String("signals", "", "comma-separated signal kinds to run (default: all)")
		expectedText = flag.String("expected-text", "", "expected serial number or denomination text")
		pretty       = flag.Bool("pretty", true, "indent the JSON output")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image-file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	imageBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read image file: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Close()

	reqCfg := service.DefaultConfig(*threshold)
	reqCfg.ExpectedText = *expectedText
	if *signals != "" {
		enabled, err := parseSignals(*signals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			flag.PrintDefaults()
			os.Exit(2)
		}
		reqCfg.Enabled = enabled
	}

	report, err := c.AnalysisService().Analyze(context.Background(), imageBytes, reqCfg)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// Visuals are large base64 payloads; keep CLI output readable.
	report.Visuals = nil

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
}

// parseSignals resolves a comma-separated list of signal kind names. A name
// that matches no known kind is an error rather than a silently empty
// signal set.
func parseSignals(raw string) (map[signal.Kind]bool, error) {
	enabled := make(map[signal.Kind]bool)
	for _, name := range strings.Split(raw, ",") {
		kind := signal.Kind(strings.ToLower(strings.TrimSpace(name)))
		known := false
		for _, k := range signal.EvaluationOrder {
			if kind == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown signal kind %q", name)
		}
		enabled[kind] = true
	}
	return enabled, nil
}
