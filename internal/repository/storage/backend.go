package storage

import (
	"context"

	"chamba-onchain-backend/config"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/logger"
)

// New picks the first configured backend in the order
// web3.storage, Pinata, IPFS API, S3. With none configured uploads go to
// the placeholder backend.
func New(ctx context.Context, cfg *config.Config) (domain.StorageBackend, error) {
	var backend domain.StorageBackend
	switch {
	case cfg.Web3StorageKey != "":
		backend = NewWeb3Storage(cfg.Web3StorageKey)
	case cfg.PinataAPIKey != "" && cfg.PinataSecretKey != "":
		backend = NewPinata(cfg.PinataAPIKey, cfg.PinataSecretKey)
	case cfg.IPFSAPIURL != "":
		backend = NewIPFSNode(cfg.IPFSAPIURL)
	case cfg.S3Bucket != "":
		s3Backend, err := NewS3Storage(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKeyID,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		backend = s3Backend
	default:
		logger.Log.Warn("no storage backend configured, uploads will use placeholder URLs")
		backend = NewPlaceholder()
	}

	logger.Log.Info("storage backend selected", "backend", backend.Name())
	return backend, nil
}
