// Command extract fetches the EMSC feed once and prints the normalized
// events as JSON. Malformed items are reported on stderr.
//
// Usage:
//
//	go run ./cmd/extract -out quakes.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/quake-feed-publisher/internal/adapter/emsc"
	"github.com/couchcryptid/quake-feed-publisher/internal/config"
	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedURL := flag.String("url", config.DefaultFeedURL, "EMSC RSS feed URL")
	tz := flag.String("tz", domain.DefaultTimezone, "IANA timezone for event times")
	timeout := flag.Duration("timeout", 10*time.Second, "feed request timeout")
	out := flag.String("out", "", "write JSON to this file instead of stdout")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := emsc.NewClient(*feedURL, *timeout, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raws, err := client.Fetch(ctx)
	if err != nil {
		return err
	}

	events := make([]domain.EarthquakeEvent, 0, len(raws))
	for _, raw := range raws {
		event, err := domain.Normalize(raw, loc)
		if err != nil {
			logger.Warn("skipping malformed feed item", "error", err)
			continue
		}
		events = append(events, event)
	}
	logger.Info("extracted events", "count", len(events), "malformed", len(raws)-len(events))

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(*out, data, 0o600)
}
