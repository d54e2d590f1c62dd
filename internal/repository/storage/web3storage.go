package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const web3StorageEndpoint = "https://api.web3.storage/upload"

type Web3Storage struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewWeb3Storage(apiKey string) *Web3Storage {
	return &Web3Storage{apiKey: apiKey, endpoint: web3StorageEndpoint, client: defaultHTTPClient()}
}

func (s *Web3Storage) Name() string { return "web3.storage" }

// Upload returns the subdomain gateway URL of the stored content.
func (s *Web3Storage) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	raw, err := postMultipart(ctx, s.client, s.endpoint,
		map[string]string{"Authorization": "Bearer " + s.apiKey}, filename, data)
	if err != nil {
		return "", fmt.Errorf("web3.storage upload: %w", err)
	}

	var resp struct {
		CID string `json:"cid"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("web3.storage response: %w", err)
	}
	if resp.CID == "" {
		return "", fmt.Errorf("web3.storage response: missing cid")
	}
	return fmt.Sprintf("https://%s.ipfs.w3s.link", resp.CID), nil
}
