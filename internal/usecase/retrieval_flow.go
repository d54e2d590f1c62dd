package usecase

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/metrics"
)

// Retry policy of the retrieval flow
const (
	maxDisplayRetries    = 3
	accessDeniedDelay    = 3 * time.Second
	networkTimeoutDelay  = 5 * time.Second
	selfAccessMessage    = "Could not load your files. Check that you uploaded files with this wallet."
	defaultDocumentLabel = "Document"
)

// kindBackOff waits according to the kind of the last failed attempt.
type kindBackOff struct {
	lastKind *domain.ErrorKind
}

func (b *kindBackOff) NextBackOff() time.Duration {
	switch *b.lastKind {
	case domain.KindAccessDenied:
		return accessDeniedDelay
	case domain.KindNetworkTimeout:
		return networkTimeoutDelay
	default:
		return backoff.Stop
	}
}

func (b *kindBackOff) Reset() {}

// retrievalFlow loads the pointers owner shares with viewer. Each start
// begins a new generation; starting again or closing cancels the running
// attempt and any pending retry timer.
type retrievalFlow struct {
	gateway  domain.ContractGateway
	owner    string
	viewer   string
	newTimer func() backoff.Timer
	now      func() time.Time

	mu         sync.Mutex
	snap       domain.RetrievalSnapshot
	generation uint64
	cancel     context.CancelFunc
	changed    chan struct{}
	closed     bool
	wg         sync.WaitGroup
}

func newRetrievalFlow(gateway domain.ContractGateway, owner, viewer string, newTimer func() backoff.Timer) *retrievalFlow {
	if newTimer == nil {
		// nil makes backoff use a real timer
		newTimer = func() backoff.Timer { return nil }
	}
	return &retrievalFlow{
		gateway:  gateway,
		owner:    owner,
		viewer:   viewer,
		newTimer: newTimer,
		now:      time.Now,
		changed:  make(chan struct{}),
	}
}

// start moves the flow back to loading and launches a fresh attempt chain.
func (f *retrievalFlow) start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.cancel != nil {
		f.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.generation++
	gen := f.generation

	f.snap = domain.RetrievalSnapshot{
		Owner:     f.owner,
		Viewer:    f.viewer,
		State:     domain.RetrievalLoading,
		Assets:    []domain.AssetPointer{},
		UpdatedAt: f.now(),
	}
	f.notifyLocked()

	f.wg.Add(1)
	go f.run(ctx, gen)
}

func (f *retrievalFlow) run(ctx context.Context, gen uint64) {
	defer f.wg.Done()

	var (
		lastKind domain.ErrorKind
		attempts int
		urls     []string
	)

	op := func() error {
		attempts++
		f.update(gen, func(s *domain.RetrievalSnapshot) { s.Attempts = attempts })

		res, err := f.gateway.Display(ctx, f.owner, f.viewer)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err != nil {
			err = f.rewrap(err)
			lastKind = domain.KindOf(err)
			metrics.RetrievalAttempts.WithLabelValues(string(lastKind)).Inc()
			if !lastKind.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		metrics.RetrievalAttempts.WithLabelValues("ok").Inc()
		urls = res
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Log.Debug("retrying display",
			"owner", f.owner, "viewer", f.viewer, "attempt", attempts, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&kindBackOff{lastKind: &lastKind}, maxDisplayRetries), ctx)
	err := backoff.RetryNotifyWithTimer(op, policy, notify, f.newTimer())

	if ctx.Err() != nil {
		// superseded by a restart or closed
		return
	}

	if err != nil {
		metrics.RetrievalOutcomes.WithLabelValues(string(domain.RetrievalError)).Inc()
		logger.Log.Warn("asset retrieval failed",
			"owner", f.owner, "viewer", f.viewer, "attempts", attempts, "kind", domain.KindOf(err), "error", err)
		f.update(gen, func(s *domain.RetrievalSnapshot) {
			s.State = domain.RetrievalError
			s.Error = domain.DisplayMessage(err)
			s.ErrorKind = domain.KindOf(err)
		})
		return
	}

	metrics.RetrievalOutcomes.WithLabelValues(string(domain.RetrievalReady)).Inc()
	assets := filterAssetURLs(urls)
	f.update(gen, func(s *domain.RetrievalSnapshot) {
		s.State = domain.RetrievalReady
		s.Assets = assets
	})
}

// rewrap gives an owner looking at their own files a dedicated message.
// The kind stays access_denied so the retry policy still applies.
func (f *retrievalFlow) rewrap(err error) error {
	if domain.KindOf(err) != domain.KindAccessDenied || !strings.EqualFold(f.owner, f.viewer) {
		return err
	}
	return domain.NewChainError("display", domain.KindAccessDenied, selfAccessMessage, err)
}

// update applies fn if gen is still the current generation.
func (f *retrievalFlow) update(gen uint64, fn func(s *domain.RetrievalSnapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || f.closed {
		return
	}
	fn(&f.snap)
	f.snap.UpdatedAt = f.now()
	f.notifyLocked()
}

func (f *retrievalFlow) notifyLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (f *retrievalFlow) snapshot() domain.RetrievalSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copySnapshot(f.snap)
}

// wait blocks until the flow leaves loading, is closed, or ctx ends.
func (f *retrievalFlow) wait(ctx context.Context) (domain.RetrievalSnapshot, error) {
	for {
		f.mu.Lock()
		if f.closed || f.snap.State != domain.RetrievalLoading {
			snap := copySnapshot(f.snap)
			f.mu.Unlock()
			return snap, nil
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return f.snapshot(), ctx.Err()
		}
	}
}

// close cancels the running attempt and pending timer and waits for the
// worker to exit. Safe to call more than once.
func (f *retrievalFlow) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
	f.notifyLocked()
	f.mu.Unlock()

	f.wg.Wait()
}

func copySnapshot(s domain.RetrievalSnapshot) domain.RetrievalSnapshot {
	s.Assets = append([]domain.AssetPointer{}, s.Assets...)
	return s
}

// filterAssetURLs keeps well-formed http(s) URLs in their original order.
func filterAssetURLs(raw []string) []domain.AssetPointer {
	out := make([]domain.AssetPointer, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		u, err := url.Parse(r)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		out = append(out, domain.AssetPointer{URL: r, Name: assetName(u, len(out)+1)})
	}
	return out
}

// assetName is the last path segment without its .pdf extension.
func assetName(u *url.URL, n int) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fmt.Sprintf("%s %d", defaultDocumentLabel, n)
	}
	if strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base = base[:len(base)-len(".pdf")]
	}
	if base == "" {
		return fmt.Sprintf("%s %d", defaultDocumentLabel, n)
	}
	return base
}
