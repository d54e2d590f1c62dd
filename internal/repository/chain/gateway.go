package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/metrics"
	"chamba-onchain-backend/pkg/validation"
)

// Signer supplies the connected account and its transaction signer.
type Signer interface {
	ActiveAccount() (common.Address, bool)
	Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error)
}

// boundContract is the subset of *bind.BoundContract the gateway uses.
type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type waitMinedFunc func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

type Config struct {
	RPCURL          string
	ContractAddress string
	RateLimit       float64 // requests per second, 0 disables
	CallTimeout     time.Duration
	ConfirmTimeout  time.Duration
}

// Gateway is the go-ethereum implementation of domain.ContractGateway.
type Gateway struct {
	contract       boundContract
	configured     bool
	signer         Signer
	waitMined      waitMinedFunc
	limiter        *rate.Limiter
	callTimeout    time.Duration
	confirmTimeout time.Duration
	client         *ethclient.Client
}

// Dial connects to the RPC endpoint. A missing or zero contract address
// does not fail startup; every operation reports misconfiguration instead.
func Dial(ctx context.Context, cfg Config, signer Signer) (*Gateway, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCURL, err)
	}

	parsed, err := abi.JSON(strings.NewReader(gatewayABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain: parse abi: %w", err)
	}

	var contract boundContract
	if addr, err := validation.NormalizeAddress(cfg.ContractAddress); err == nil {
		contract = bind.NewBoundContract(common.HexToAddress(addr), parsed, client, client, client)
	} else {
		logger.Log.Warn("contract address not configured", "value", cfg.ContractAddress)
	}

	g := newGateway(contract, signer, func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, client, tx)
	}, cfg)
	g.client = client
	return g, nil
}

func newGateway(contract boundContract, signer Signer, waitMined waitMinedFunc, cfg Config) *Gateway {
	g := &Gateway{
		contract:       contract,
		configured:     contract != nil,
		signer:         signer,
		waitMined:      waitMined,
		callTimeout:    cfg.CallTimeout,
		confirmTimeout: cfg.ConfirmTimeout,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if g.callTimeout <= 0 {
		g.callTimeout = 30 * time.Second
	}
	if g.confirmTimeout <= 0 {
		g.confirmTimeout = 5 * time.Minute
	}
	return g
}

func (g *Gateway) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Add records url under owner. It returns once the transaction is sent.
func (g *Gateway) Add(ctx context.Context, owner, url string) (txHash string, err error) {
	defer observe(methodAdd, time.Now(), &err)

	ownerAddr, err := g.address(methodAdd, "owner", owner)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(url) == "" {
		return "", validationError(methodAdd, "Invalid storage URL", nil)
	}
	if err := g.ready(methodAdd); err != nil {
		return "", err
	}

	account, ok := g.signer.ActiveAccount()
	if !ok {
		return "", classify(methodAdd, domain.ErrWalletNotConnected)
	}

	tx, err := g.transact(ctx, methodAdd, account, ownerAddr, url)
	if err != nil {
		return "", err
	}
	logger.Log.Info("add transaction sent", "owner", ownerAddr.Hex(), "tx", tx.Hash().Hex())
	return tx.Hash().Hex(), nil
}

// Display reads owner's pointers with viewer as the calling account.
func (g *Gateway) Display(ctx context.Context, owner, viewer string) (urls []string, err error) {
	defer observe(methodDisplay, time.Now(), &err)

	ownerAddr, err := g.address(methodDisplay, "owner", owner)
	if err != nil {
		return nil, err
	}
	viewerAddr, err := g.address(methodDisplay, "viewer", viewer)
	if err != nil {
		return nil, err
	}
	if err := g.ready(methodDisplay); err != nil {
		return nil, err
	}

	out, err := g.call(ctx, methodDisplay, viewerAddr, ownerAddr)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []string{}, nil
	}
	files, ok := out[0].([]string)
	if !ok {
		logger.Log.Warn("display returned unexpected type", "type", fmt.Sprintf("%T", out[0]))
		return []string{}, nil
	}
	return files, nil
}

func (g *Gateway) Allow(ctx context.Context, owner, viewer string) (res *domain.TxResult, err error) {
	defer observe(methodAllow, time.Now(), &err)
	return g.changeAccess(ctx, methodAllow, owner, viewer)
}

func (g *Gateway) Disallow(ctx context.Context, owner, viewer string) (res *domain.TxResult, err error) {
	defer observe(methodDisallow, time.Now(), &err)
	return g.changeAccess(ctx, methodDisallow, owner, viewer)
}

func (g *Gateway) changeAccess(ctx context.Context, method, owner, viewer string) (*domain.TxResult, error) {
	ownerAddr, err := g.address(method, "owner", owner)
	if err != nil {
		return nil, err
	}
	viewerAddr, err := g.address(method, "viewer", viewer)
	if err != nil {
		return nil, err
	}
	if err := g.ready(method); err != nil {
		return nil, err
	}

	account, ok := g.signer.ActiveAccount()
	if !ok {
		return nil, classify(method, domain.ErrWalletNotConnected)
	}
	if account != ownerAddr {
		verb := "grant"
		if method == methodDisallow {
			verb = "revoke"
		}
		return nil, domain.NewChainError(method, domain.KindAccessDenied,
			fmt.Sprintf("Only the owner can %s access", verb), nil)
	}

	tx, err := g.transact(ctx, method, account, viewerAddr)
	if err != nil {
		return nil, err
	}
	return g.confirm(ctx, method, tx)
}

// confirm waits for the receipt. Running out of time is not a failure:
// the transaction was sent and its outcome is unknown.
func (g *Gateway) confirm(ctx context.Context, method string, tx *types.Transaction) (*domain.TxResult, error) {
	result := &domain.TxResult{Hash: tx.Hash().Hex()}

	waitCtx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	receipt, err := g.waitMined(waitCtx, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.TxConfirmTimeouts.WithLabelValues(method).Inc()
			logger.Log.Warn("transaction confirmation timed out, transaction was sent", "method", method, "tx", result.Hash)
			result.Pending = true
			return result, nil
		}
		return nil, classify(method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, domain.NewChainError(method, domain.KindUnknown,
			fmt.Sprintf("Transaction %s reverted", result.Hash), nil)
	}
	return result, nil
}

// ShareAccess lists owner's grants, calling the contract as owner.
func (g *Gateway) ShareAccess(ctx context.Context, owner string) (grants []domain.AccessGrant, err error) {
	defer observe(methodShareAccess, time.Now(), &err)

	ownerAddr, err := g.address(methodShareAccess, "owner", owner)
	if err != nil {
		return nil, err
	}
	if err := g.ready(methodShareAccess); err != nil {
		return nil, err
	}

	out, err := g.call(ctx, methodShareAccess, ownerAddr)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []domain.AccessGrant{}, nil
	}

	entries, err := convertAccess(out[0])
	if err != nil {
		return nil, classify(methodShareAccess, err)
	}
	grants = make([]domain.AccessGrant, 0, len(entries))
	for _, e := range entries {
		grants = append(grants, domain.AccessGrant{Viewer: e.User.Hex(), Active: e.Access})
	}
	return grants, nil
}

func convertAccess(raw interface{}) (entries []accessEntry, err error) {
	if direct, ok := raw.([]accessEntry); ok {
		return direct, nil
	}
	// abi.ConvertType panics on shape mismatch
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected shareAccess result %T: %v", raw, r)
		}
	}()
	return *abi.ConvertType(raw, new([]accessEntry)).(*[]accessEntry), nil
}

func (g *Gateway) address(op, role, raw string) (common.Address, error) {
	normalized, err := validation.NormalizeAddress(raw)
	if err != nil {
		return common.Address{}, validationError(op, fmt.Sprintf("Invalid %s address", role), err)
	}
	return common.HexToAddress(normalized), nil
}

func (g *Gateway) ready(op string) error {
	if !g.configured || g.contract == nil {
		return domain.NewChainError(op, domain.KindMisconfigured, msgNotConfigured, nil)
	}
	return nil
}

func (g *Gateway) call(ctx context.Context, method string, from common.Address, params ...interface{}) ([]interface{}, error) {
	if err := g.wait(ctx); err != nil {
		return nil, classify(method, err)
	}
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{From: from, Context: callCtx}, &out, method, params...); err != nil {
		return nil, classify(method, err)
	}
	return out, nil
}

func (g *Gateway) transact(ctx context.Context, method string, account common.Address, params ...interface{}) (*types.Transaction, error) {
	if err := g.wait(ctx); err != nil {
		return nil, classify(method, err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	opts, err := g.signer.Transactor(sendCtx, account)
	if err != nil {
		return nil, classify(method, err)
	}
	tx, err := g.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, classify(method, err)
	}
	return tx, nil
}

// wait consumes one limiter token, blocking until it is available or ctx ends.
func (g *Gateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	r := g.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}
	if delay := r.Delay(); delay > 0 {
		metrics.RPCRateLimitWaits.Inc()
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return nil
}

func observe(method string, start time.Time, errp *error) {
	kind := "ok"
	if *errp != nil {
		kind = string(domain.KindOf(*errp))
	}
	metrics.ChainCallsTotal.WithLabelValues(method, kind).Inc()
	metrics.ChainCallLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
