package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const pinataEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"

type Pinata struct {
	apiKey    string
	secretKey string
	endpoint  string
	client    *http.Client
}

func NewPinata(apiKey, secretKey string) *Pinata {
	return &Pinata{apiKey: apiKey, secretKey: secretKey, endpoint: pinataEndpoint, client: defaultHTTPClient()}
}

func (p *Pinata) Name() string { return "pinata" }

// Upload pins data with CID v0 and returns its public gateway URL.
func (p *Pinata) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	metadata, _ := json.Marshal(map[string]string{"name": filename})
	options, _ := json.Marshal(map[string]int{"cidVersion": 0})

	raw, err := postMultipart(ctx, p.client, p.endpoint,
		map[string]string{
			"pinata_api_key":        p.apiKey,
			"pinata_secret_api_key": p.secretKey,
		},
		filename, data,
		formField{name: "pinataMetadata", value: string(metadata)},
		formField{name: "pinataOptions", value: string(options)},
	)
	if err != nil {
		return "", fmt.Errorf("pinata upload: %w", err)
	}

	var resp struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("pinata response: %w", err)
	}
	if resp.IpfsHash == "" {
		return "", fmt.Errorf("pinata response: missing IpfsHash")
	}
	return "https://gateway.pinata.cloud/ipfs/" + resp.IpfsHash, nil
}
