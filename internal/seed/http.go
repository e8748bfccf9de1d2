package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func postJSON(ctx context.Context, client *http.Client, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// submit pushes the interactions through a bounded worker pool.
func submit(ctx context.Context, cfg *Config, interactions []Interaction, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/interactions"

	work := make(chan Interaction, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				resp, err := postJSON(ctx, client, url, item)
				if err != nil {
					atomic.AddInt64(&stats.Failed, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()

				switch resp.StatusCode {
				case http.StatusAccepted:
					atomic.AddInt64(&stats.Successful, 1)
				case http.StatusOK:
					atomic.AddInt64(&stats.Duplicate, 1)
				default:
					atomic.AddInt64(&stats.Failed, 1)
				}
			}
		}()
	}

	for _, item := range interactions {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return fmt.Errorf("submission cancelled: %w", ctx.Err())
		case work <- item:
		}
	}
	close(work)
	wg.Wait()
	return nil
}

// train triggers one training run and decodes its report.
func train(ctx context.Context, cfg *Config) (map[string]any, error) {
	client := newHTTPClient(5 * time.Minute)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/admin/train", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("training request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read training response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("training failed with status %d: %s", resp.StatusCode, body)
	}

	var report map[string]any
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode training report: %w", err)
	}
	return report, nil
}
