package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// IPFSNode adds files through a Kubo-compatible HTTP API (/api/v0/add).
type IPFSNode struct {
	apiURL string
	client *http.Client
}

func NewIPFSNode(apiURL string) *IPFSNode {
	return &IPFSNode{apiURL: strings.TrimRight(apiURL, "/"), client: defaultHTTPClient()}
}

func (n *IPFSNode) Name() string { return "ipfs" }

func (n *IPFSNode) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	raw, err := postMultipart(ctx, n.client, n.apiURL+"/api/v0/add", nil, filename, data)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}

	var resp struct {
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("ipfs add response: %w", err)
	}
	if resp.Hash == "" {
		return "", fmt.Errorf("ipfs add response: missing Hash")
	}
	return "https://ipfs.io/ipfs/" + resp.Hash, nil
}
