package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/metrics"
	"chamba-onchain-backend/pkg/security"
	"chamba-onchain-backend/pkg/security/antivirus"
	"chamba-onchain-backend/pkg/validation"
)

// AssetOptions tunes the asset usecase. Zero values pick defaults.
type AssetOptions struct {
	MaxUploadBytes int64
	// StaleAfter restarts finished flows older than this on the next read.
	StaleAfter time.Duration
	// NewTimer overrides the retry timer (tests).
	NewTimer func() backoff.Timer
	// Scanner checks uploads before they are pinned. Nil skips scanning.
	Scanner antivirus.Scanner
}

type flowKey struct {
	viewer string
	owner  string
}

func newFlowKey(viewer, owner string) flowKey {
	return flowKey{viewer: strings.ToLower(viewer), owner: strings.ToLower(owner)}
}

type assetUsecase struct {
	gateway domain.ContractGateway
	storage domain.StorageBackend
	session domain.WalletSession
	opts    AssetOptions

	mu     sync.Mutex
	flows  map[flowKey]*retrievalFlow
	closed bool

	sub       domain.Subscription
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAssetUsecase wires retrieval flows and uploads. When the wallet
// session switches account or disconnects, flows viewed by the previous
// account are torn down.
func NewAssetUsecase(gateway domain.ContractGateway, storage domain.StorageBackend, session domain.WalletSession, opts AssetOptions) domain.AssetUsecase {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Minute
	}
	u := &assetUsecase{
		gateway: gateway,
		storage: storage,
		session: session,
		opts:    opts,
		flows:   make(map[flowKey]*retrievalFlow),
		quit:    make(chan struct{}),
	}

	if session != nil {
		states := make(chan domain.WalletState, 8)
		u.sub = session.Subscribe(states)
		u.wg.Add(1)
		go u.watchSession(session.Current(), states)
	}
	return u
}

func (u *assetUsecase) watchSession(prev domain.WalletState, states <-chan domain.WalletState) {
	defer u.wg.Done()
	for {
		select {
		case st := <-states:
			if prev.Address != "" && (!st.Connected || !strings.EqualFold(st.Address, prev.Address)) {
				u.ReleaseViewer(prev.Address)
			}
			prev = st
		case <-u.sub.Err():
			return
		case <-u.quit:
			return
		}
	}
}

// Retrieve returns the flow snapshot for (viewer, owner), starting the flow
// on first use. With wait set it blocks until the flow leaves loading.
func (u *assetUsecase) Retrieve(ctx context.Context, viewer, owner string, wait bool) (*domain.RetrievalSnapshot, error) {
	viewer, owner, err := normalizePair(viewer, owner)
	if err != nil {
		return nil, err
	}

	flow, err := u.flow(viewer, owner, false)
	if err != nil {
		return nil, err
	}

	var snap domain.RetrievalSnapshot
	if wait {
		snap, err = flow.wait(ctx)
		// a bounded wait that runs out still answers with the loading snapshot
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	} else {
		snap = flow.snapshot()
	}
	return &snap, nil
}

// Refresh restarts the flow from loading, cancelling any attempt or retry in flight.
func (u *assetUsecase) Refresh(ctx context.Context, viewer, owner string) (*domain.RetrievalSnapshot, error) {
	viewer, owner, err := normalizePair(viewer, owner)
	if err != nil {
		return nil, err
	}
	flow, err := u.flow(viewer, owner, true)
	if err != nil {
		return nil, err
	}
	snap := flow.snapshot()
	return &snap, nil
}

func (u *assetUsecase) flow(viewer, owner string, restart bool) (*retrievalFlow, error) {
	key := newFlowKey(viewer, owner)

	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil, apperror.ServiceUnavailable("Service is shutting down")
	}
	flow, ok := u.flows[key]
	if !ok {
		flow = newRetrievalFlow(u.gateway, owner, viewer, u.opts.NewTimer)
		u.flows[key] = flow
		metrics.RetrievalFlowsActive.Set(float64(len(u.flows)))
		restart = true
	}
	u.mu.Unlock()

	if !restart {
		snap := flow.snapshot()
		if snap.State != domain.RetrievalLoading && time.Since(snap.UpdatedAt) > u.opts.StaleAfter {
			restart = true
		}
	}
	if restart {
		flow.start()
	}
	return flow, nil
}

// ReleaseViewer tears down every flow viewed by viewer.
func (u *assetUsecase) ReleaseViewer(viewer string) {
	var released []*retrievalFlow

	u.mu.Lock()
	for key, flow := range u.flows {
		if strings.EqualFold(key.viewer, viewer) {
			released = append(released, flow)
			delete(u.flows, key)
		}
	}
	metrics.RetrievalFlowsActive.Set(float64(len(u.flows)))
	u.mu.Unlock()

	for _, flow := range released {
		flow.close()
	}
	if len(released) > 0 {
		logger.Log.Info("released retrieval flows", "viewer", viewer, "count", len(released))
	}
}

// Upload stores a PDF and records its URL on-chain under owner.
// A failed on-chain write leaves the stored object orphaned.
func (u *assetUsecase) Upload(ctx context.Context, owner, filename string, data []byte) (*domain.UploadResult, error) {
	owner, err := validation.NormalizeAddress(owner)
	if err != nil {
		return nil, apperror.BadRequest("Invalid owner address")
	}
	if err := u.requireActive(owner); err != nil {
		return nil, err
	}

	check := security.ValidatePDF(filename, data, u.opts.MaxUploadBytes)
	if !check.Valid {
		return nil, apperror.BadRequest(check.Error.Error())
	}
	name := security.SanitizeFilename(filename)

	if u.opts.Scanner != nil {
		res := u.opts.Scanner.Scan(ctx, name, data)
		if res.Error != nil {
			logger.Log.Error("upload scan failed", "scanner", res.ScannerName, "owner", owner, "error", res.Error)
			return nil, apperror.ServiceUnavailable("File scanning is unavailable. Please try again later.")
		}
		if res.Infected {
			security.DefaultLogger().LogUploadRejected(ctx, owner, name, res.ThreatName)
			return nil, apperror.BadRequest("File rejected by malware scan")
		}
	}

	backendName := u.storage.Name()
	url, err := u.storage.Upload(ctx, name, data)
	metrics.UploadsTotal.WithLabelValues(backendName, metrics.Status(err)).Inc()
	if err != nil {
		logger.Log.Error("storage upload failed", "backend", backendName, "owner", owner, "error", err)
		return nil, apperror.New(http.StatusBadGateway, "Error uploading the file to storage. Please try again.", err)
	}
	metrics.UploadBytes.Observe(float64(len(data)))

	// the account may have switched while the upload was in flight
	if err := u.requireActive(owner); err != nil {
		logger.Log.Warn("orphaned upload: wallet changed before recording", "owner", owner, "url", url)
		return nil, err
	}

	txHash, err := u.gateway.Add(ctx, owner, url)
	if err != nil {
		logger.Log.Warn("orphaned upload: recording on-chain failed",
			"owner", owner, "url", url, "kind", domain.KindOf(err), "error", err)
		return nil, err
	}

	logger.Log.Info("asset uploaded", "owner", owner, "backend", backendName, "url", url, "tx", txHash)

	u.mu.Lock()
	self, ok := u.flows[newFlowKey(owner, owner)]
	u.mu.Unlock()
	if ok {
		self.start()
	}

	return &domain.UploadResult{
		Asset:   domain.AssetPointer{URL: url, Name: assetNameFromURL(url)},
		TxHash:  txHash,
		Backend: backendName,
	}, nil
}

func (u *assetUsecase) requireActive(owner string) error {
	if u.session == nil {
		return domain.ErrWalletNotConnected
	}
	st := u.session.Current()
	if !st.Connected {
		return domain.ErrWalletNotConnected
	}
	if !strings.EqualFold(st.Address, owner) {
		return apperror.Forbidden("The connected wallet changed. Only the owner can upload files.")
	}
	return nil
}

// Close cancels every flow and stops watching the session.
func (u *assetUsecase) Close() {
	u.closeOnce.Do(func() {
		close(u.quit)
		if u.sub != nil {
			u.sub.Unsubscribe()
		}
		u.wg.Wait()

		u.mu.Lock()
		u.closed = true
		flows := u.flows
		u.flows = make(map[flowKey]*retrievalFlow)
		u.mu.Unlock()

		for _, flow := range flows {
			flow.close()
		}
		metrics.RetrievalFlowsActive.Set(0)
	})
}

func normalizePair(viewer, owner string) (string, string, error) {
	v, err := validation.NormalizeAddress(viewer)
	if err != nil {
		return "", "", apperror.BadRequest("Invalid viewer address")
	}
	o, err := validation.NormalizeAddress(owner)
	if err != nil {
		return "", "", apperror.BadRequest("Invalid owner address")
	}
	return v, o, nil
}

func assetNameFromURL(raw string) string {
	assets := filterAssetURLs([]string{raw})
	if len(assets) == 0 {
		return defaultDocumentLabel + " 1"
	}
	return assets[0].Name
}
