package storage

import (
	"context"
	"fmt"
	"time"

	"chamba-onchain-backend/pkg/logger"
)

// Placeholder stores nothing and returns a fake gateway URL. It is used in
// development when no storage backend is configured.
type Placeholder struct {
	now func() time.Time
}

func NewPlaceholder() *Placeholder {
	return &Placeholder{now: time.Now}
}

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	url := fmt.Sprintf("https://ipfs.io/ipfs/placeholder-%d", p.now().UnixMilli())
	logger.Log.Warn("using placeholder storage URL, configure a storage backend for production",
		"filename", filename, "url", url)
	return url, nil
}
