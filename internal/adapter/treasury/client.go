package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crowdfund/internal/core/domain"
)

// ClientConfig configures the settlement client. HTTPClient may be nil, in
// which case a client with a default timeout is used.
type ClientConfig struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client implements port.Treasury against an external settlement service.
// Transfers are synchronous: a non-2xx response or transport error means the
// value did not move and the caller must roll its ledger change back.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a settlement client for the given endpoint.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: httpClient,
	}
}

type transferRequest struct {
	To        domain.Principal `json:"to"`
	Amount    int64            `json:"amount"`
	Reference string           `json:"reference"`
}

// Transfer posts a payout order to the settlement service.
func (c *Client) Transfer(ctx context.Context, to domain.Principal, amount int64, reference string) error {
	body, err := json.Marshal(transferRequest{To: to, Amount: amount, Reference: reference})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transfers", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("transfer to %q failed: status=%d body=%s", to, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
