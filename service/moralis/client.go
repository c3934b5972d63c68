package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brojonat/daoacct/service/ledger"
)

// DefaultBaseURL is the production indexer endpoint.
const DefaultBaseURL = "https://deep-index.moralis.io/api/v2.2"

// pageSize is the per-request result limit. The indexer caps this server-side
// anyway; we just ask for the maximum.
const pageSize = 100

// Client fetches paginated wallet history from the indexer.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an indexer client. A nil httpClient gets a 30s-timeout
// default; a nil logger discards output.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchAll retrieves the complete transaction history for a wallet on a
// chain, following the page cursor until exhausted.
//
// When a later page fails, the pages already fetched are returned alongside
// the error so the caller can degrade gracefully instead of discarding work.
// There is no retry: one failure per page is final.
func (c *Client) FetchAll(ctx context.Context, wallet string, chain ledger.Chain) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/wallets/%s/history", c.baseURL, url.PathEscape(wallet))

	var all []Transaction
	cursor := ""
	for {
		page, err := c.fetchPage(ctx, endpoint, chain, cursor)
		if err != nil {
			return all, fmt.Errorf("fetching history for %s on %s: %w", wallet, chain, err)
		}
		all = append(all, page.Result...)
		c.logger.Debug("fetched history page",
			"wallet", wallet,
			"chain", string(chain),
			"page_count", len(page.Result),
			"total", len(all),
		)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	c.logger.Info("wallet history fetch complete",
		"wallet", wallet, "chain", string(chain), "transactions", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, chain ledger.Chain, cursor string) (*HistoryPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("chain", string(chain))
	q.Set("order", "DESC")
	q.Set("limit", fmt.Sprintf("%d", pageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page HistoryPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}
