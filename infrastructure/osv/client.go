package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/infrastructure/telemetry"
)

const (
	// DefaultBaseURL points at the public OSV.dev API.
	DefaultBaseURL = "https://api.osv.dev/v1"

	// DefaultBatchSize keeps querybatch requests under the API's size limit.
	// Together with DefaultWorkers it is the backpressure lever against the
	// registry's rate limits.
	DefaultBatchSize = 300

	// DefaultWorkers bounds the phase-2 detail fetch fan-out.
	DefaultWorkers = 10

	// DefaultTimeout applies to every single outbound request.
	DefaultTimeout = 20 * time.Second
)

// Config tunes the registry client. Zero values select the defaults.
type Config struct {
	BaseURL   string
	BatchSize int
	Workers   int
	Timeout   time.Duration
}

// Client implements domain.VulnerabilityRegistry against an OSV-style API.
type Client struct {
	baseURL    string
	batchSize  int
	workers    int
	httpClient *http.Client
}

// NewClient creates a registry client with the given tuning.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		batchSize:  cfg.BatchSize,
		workers:    cfg.Workers,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ domain.VulnerabilityRegistry = (*Client)(nil)

// QueryBatch runs phase 1 of the protocol. Dependencies are partitioned into
// fixed-size batches; each response is positionally aligned with its request,
// so results are correlated back by index, never reordered.
func (c *Client) QueryBatch(
	ctx context.Context,
	deps []domain.Dependency,
) (*domain.BatchReport, error) {
	report := &domain.BatchReport{IDsByDep: make([][]string, len(deps))}
	seen := make(map[string]struct{})

	for start := 0; start < len(deps); start += c.batchSize {
		end := start + c.batchSize
		if end > len(deps) {
			end = len(deps)
		}
		batch := deps[start:end]

		results, err := c.queryOneBatch(ctx, batch)
		if err != nil {
			return nil, err
		}

		for i, res := range results {
			ids := make([]string, 0, len(res.Vulns))
			for _, v := range res.Vulns {
				if v.ID == "" {
					continue
				}
				ids = append(ids, v.ID)
				report.TotalHits++
				if _, ok := seen[v.ID]; !ok {
					seen[v.ID] = struct{}{}
					report.UniqueIDs = append(report.UniqueIDs, v.ID)
				}
			}
			report.IDsByDep[start+i] = ids
		}
	}

	logger.Debugf("[osv] batch query done: %d deps, %d hits, %d unique ids",
		len(deps), report.TotalHits, len(report.UniqueIDs))
	return report, nil
}

func (c *Client) queryOneBatch(
	ctx context.Context,
	deps []domain.Dependency,
) ([]batchResult, error) {
	queries := make([]batchQuery, 0, len(deps))
	for _, d := range deps {
		queries = append(queries, batchQuery{
			Package: packageRef{Name: d.Name, Ecosystem: string(d.Ecosystem)},
			Version: d.Version,
		})
	}

	body, err := json.Marshal(batchRequest{Queries: queries})
	if err != nil {
		return nil, domain.NewScanError(domain.ErrCodeUpstream, "failed to marshal batch query", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/querybatch", bytes.NewReader(body),
	)
	if err != nil {
		return nil, domain.NewScanError(domain.ErrCodeUpstream, "failed to create batch request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	telemetry.RegistryRequests.WithLabelValues("querybatch").Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewScanError(domain.ErrCodeUpstream, "batch query request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRetryableError(
			domain.ErrCodeRateLimited,
			"vulnerability registry rate limited the batch query, retry with backoff",
			nil,
		)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewScanError(
			domain.ErrCodeUpstream,
			fmt.Sprintf("batch query returned status %s", resp.Status),
			nil,
		)
	}

	var parsed batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.NewScanError(domain.ErrCodeUpstream, "failed to decode batch response", err)
	}
	if len(parsed.Results) != len(deps) {
		return nil, domain.NewScanError(
			domain.ErrCodeUpstream,
			fmt.Sprintf("batch response misaligned: %d results for %d queries",
				len(parsed.Results), len(deps)),
			nil,
		)
	}
	return parsed.Results, nil
}

// FetchDetails runs phase 2: a fixed pool of workers drains the ID queue.
// Failures and timeouts of individual fetches are logged and skipped; the
// scan proceeds with whatever details were obtained.
func (c *Client) FetchDetails(
	ctx context.Context,
	ids []string,
) map[string]*domain.VulnerabilityDetail {
	details := make(map[string]*domain.VulnerabilityDetail, len(ids))
	if len(ids) == 0 {
		return details
	}

	queue := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := c.workers
	if workers > len(ids) {
		workers = len(ids)
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range queue {
				detail, err := c.fetchOne(ctx, id)
				if err != nil {
					telemetry.DetailFetchFailures.Inc()
					logger.Warnf("[osv] skipping %s: %v", id, err)
					continue
				}
				mu.Lock()
				details[id] = detail
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		select {
		case queue <- id:
		case <-ctx.Done():
			// Caller cancelled mid-flight; stop feeding and let the
			// in-flight fetches unwind.
			close(queue)
			wg.Wait()
			return details
		}
	}
	close(queue)
	wg.Wait()
	return details
}

func (c *Client) fetchOne(ctx context.Context, id string) (*domain.VulnerabilityDetail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/vulns/"+id, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail request: %w", err)
	}

	telemetry.RegistryRequests.WithLabelValues("vulns").Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail request returned status %s", resp.Status)
	}

	var vuln vulnerability
	if err := json.NewDecoder(resp.Body).Decode(&vuln); err != nil {
		return nil, fmt.Errorf("failed to decode detail response: %w", err)
	}
	return vuln.toDetail(), nil
}
