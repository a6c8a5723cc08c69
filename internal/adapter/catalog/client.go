package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ayurbot/internal/domain"
)

// Client queries the catalog service's keyword search endpoint. The
// catalog is an external collaborator; this adapter only speaks its
// /items?search= contract and never writes.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search returns catalog items matching the term. The backing search is
// substring-based with no ranking contract.
func (c *Client) Search(term string) ([]domain.CatalogItem, error) {
	u := fmt.Sprintf("%s/items?search=%s", c.baseURL, url.QueryEscape(term))

	resp, err := c.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	var items []domain.CatalogItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	return items, nil
}
