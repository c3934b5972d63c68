package safe

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

// DefaultBaseURLs are the production transaction-service hosts per chain.
var DefaultBaseURLs = map[ledger.Chain]string{
	ledger.ChainEthereum: "https://safe-transaction-mainnet.safe.global",
	ledger.ChainOptimism: "https://safe-transaction-optimism.safe.global",
}

const pageLimit = 100

// Client fetches the combined transaction feed for a smart-contract wallet.
type Client struct {
	baseURLs   map[ledger.Chain]string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a transaction-service client. nil baseURLs selects the
// production hosts; a nil httpClient gets a 30s-timeout default; a nil
// logger discards output.
func NewClient(baseURLs map[ledger.Chain]string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURLs == nil {
		baseURLs = DefaultBaseURLs
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURLs:   baseURLs,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchAll retrieves every transaction recorded for the wallet on a chain,
// following next-page URLs until exhausted.
//
// As with the indexer client, pages already fetched are returned alongside
// any error from a later page.
func (c *Client) FetchAll(ctx context.Context, wallet string, chain ledger.Chain) ([]Transaction, error) {
	base, ok := c.baseURLs[chain]
	if !ok {
		return nil, fmt.Errorf("no transaction service configured for chain %q", chain)
	}
	next := fmt.Sprintf("%s/api/v1/safes/%s/all-transactions/?limit=%d&executed=true",
		base, url.PathEscape(wallet), pageLimit)

	var all []Transaction
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return all, fmt.Errorf("fetching transactions for %s on %s: %w", wallet, chain, err)
		}
		all = append(all, page.Results...)
		c.logger.Debug("fetched transaction page",
			"wallet", wallet,
			"chain", string(chain),
			"page_count", len(page.Results),
			"total", len(all),
			"reported_count", page.Count,
		)
		next = page.Next
	}

	c.logger.Info("safe transaction fetch complete",
		"wallet", wallet, "chain", string(chain), "transactions", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*TransactionsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page TransactionsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}
