package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/mock"

	"chamba-onchain-backend/internal/domain"
)

const (
	ownerAddr  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	viewerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	otherAddr  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Add(ctx context.Context, owner, url string) (string, error) {
	args := m.Called(ctx, owner, url)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Display(ctx context.Context, owner, viewer string) ([]string, error) {
	args := m.Called(ctx, owner, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) Allow(ctx context.Context, owner, viewer string) (*domain.TxResult, error) {
	args := m.Called(ctx, owner, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxResult), args.Error(1)
}

func (m *MockGateway) Disallow(ctx context.Context, owner, viewer string) (*domain.TxResult, error) {
	args := m.Called(ctx, owner, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxResult), args.Error(1)
}

func (m *MockGateway) ShareAccess(ctx context.Context, owner string) ([]domain.AccessGrant, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccessGrant), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Name() string { return "mock" }

func (m *MockStorage) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) All(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// fakeSession is a wallet session whose state tests set directly.
type fakeSession struct {
	mu    sync.Mutex
	state domain.WalletState
	feed  event.Feed
}

func connectedSession(address string) *fakeSession {
	return &fakeSession{state: domain.WalletState{Address: address, Connected: true}}
}

func (s *fakeSession) Current() domain.WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSession) Connect(context.Context) (domain.WalletState, error) {
	return s.Current(), nil
}

func (s *fakeSession) Disconnect() {
	s.set(domain.WalletState{})
}

func (s *fakeSession) Subscribe(ch chan<- domain.WalletState) domain.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *fakeSession) set(st domain.WalletState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.feed.Send(st)
}

// fakeTimer records requested waits. It fires at once unless blocking,
// in which case it never fires.
type fakeTimer struct {
	rec *timerRecorder
	c   chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.rec.record(d)
	if !t.rec.blocking {
		t.c <- time.Now()
	}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

type timerRecorder struct {
	blocking bool
	started  chan time.Duration

	mu    sync.Mutex
	waits []time.Duration
}

func newTimerRecorder(blocking bool) *timerRecorder {
	return &timerRecorder{blocking: blocking, started: make(chan time.Duration, 16)}
}

func (r *timerRecorder) record(d time.Duration) {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	r.started <- d
}

func (r *timerRecorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration{}, r.waits...)
}
