// Command seed-orders posts order records from a JSON file to a running API
// instance. It is a development utility for populating a database with
// sample data through the public HTTP surface, so every record passes the
// same validation as real traffic.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		baseURL    string
		ordersFile string
		apiKey     string
		workers    int
	)

	flag.StringVar(&baseURL, "base-url", "http://localhost:8080", "API base URL")
	flag.StringVar(&ordersFile, "orders-file", "db/seed/orders.json", "path to orders JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to authenticate with (or ORDERS_SEED_API_KEY env)")
	flag.IntVar(&workers, "workers", 4, "number of concurrent posting workers")
	flag.Parse()

	if apiKey == "" {
		apiKey = os.Getenv("ORDERS_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or ORDERS_SEED_API_KEY")
		os.Exit(1)
	}

	data, err := os.ReadFile(ordersFile)
	if err != nil {
		slog.Error("read orders file", "path", ordersFile, "err", err)
		os.Exit(1)
	}

	var orders []json.RawMessage
	if err := json.Unmarshal(data, &orders); err != nil {
		slog.Error("parse orders file", "path", ordersFile, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}

	var posted, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, o := range orders {
		g.Go(func() error {
			if err := postOrder(ctx, client, baseURL, apiKey, o); err != nil {
				failed.Add(1)
				slog.Warn("post order", "err", err)
				return nil // keep seeding the rest
			}
			posted.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("seeding aborted", "err", err)
		os.Exit(1)
	}

	slog.Info("seeding complete", "posted", posted.Load(), "failed", failed.Load(), "total", len(orders))
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func postOrder(ctx context.Context, client *http.Client, baseURL, apiKey string, payload json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/orders/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var body errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := string(raw)
		if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
			detail = body.Detail
		}
		slog.Warn("order rejected", "status", resp.StatusCode, "detail", detail)
		return errStatus(resp.StatusCode)
	}
	return nil
}

type errStatus int

func (e errStatus) Error() string {
	return http.StatusText(int(e))
}
