package probe

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/okian/scout/pkg/logger"
)

// Run samples players from the service at cfg.BaseURL, asks for the
// neighbours of each and verifies every response. The returned report is
// filled in even when verification fails.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.withDefaults()
	log := logger.Get().Named("probe")
	report := &Report{StartTime: time.Now()}
	defer func() { report.Duration = time.Since(report.StartTime) }()

	log.Info(ctx, "starting scout probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("samples", cfg.Samples),
		logger.Int("limit", cfg.Limit),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return report, err
	}

	ids, err := samplePlayers(ctx, client, cfg.Samples)
	if err != nil {
		return report, err
	}
	report.Samples = len(ids)

	querySimilar(ctx, client, cfg, ids, report)

	log.Info(ctx, "probe finished",
		logger.Int("queries", report.Queries),
		logger.Int("failed", report.Failed),
		logger.Int("skipped", report.Skipped),
		logger.Int("results", report.Results),
		logger.Int("violations", len(report.Violations)))

	if report.Failed > 0 || len(report.Violations) > 0 {
		return report, fmt.Errorf("%w: %d failed queries, %d violations", ErrVerification, report.Failed, len(report.Violations))
	}
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	status, _, err := client.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// samplePlayers returns up to n player ids from the first page of the listing.
func samplePlayers(ctx context.Context, client *httpClient, n int) ([]int, error) {
	var page []entry
	if err := client.getJSON(ctx, "/api/players?limit="+strconv.Itoa(n), &page); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if len(page) == 0 {
		return nil, ErrNoPlayers
	}
	ids := make([]int, len(page))
	for i, p := range page {
		ids[i] = p.ID
	}
	return ids, nil
}

// querySimilar fans the sampled ids out to cfg.Workers workers.
func querySimilar(ctx context.Context, client *httpClient, cfg Config, ids []int, report *Report) {
	log := logger.Get().Named("probe")
	var mu sync.Mutex
	var wg sync.WaitGroup

	idChan := make(chan int, cfg.Workers*2)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idChan {
				path := "/api/players/" + strconv.Itoa(id) + "/similar?limit=" + strconv.Itoa(cfg.Limit)
				status, body, err := client.get(ctx, path)
				var results []entry
				if err == nil {
					err = decodeBody(path, status, body, &results)
				}

				mu.Lock()
				report.Queries++
				if status == http.StatusBadRequest {
					// The reference itself lacks a value for a default attribute.
					report.Skipped++
				} else if err != nil {
					report.Failed++
					report.Violations = append(report.Violations, fmt.Sprintf("player %d: %v", id, err))
				} else {
					report.Results += len(results)
					report.Violations = append(report.Violations, verifyResults(id, cfg.Limit, results)...)
				}
				mu.Unlock()

				if cfg.Verbose {
					log.Debug(ctx, "similar query", logger.Int("id", id), logger.Int("results", len(results)), logger.Error(err))
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case idChan <- id:
		}
	}
	close(idChan)
	wg.Wait()
}
