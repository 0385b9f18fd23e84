package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	publisher "github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/kafka"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/notifier"
	"github.com/shopspring/decimal"
)

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (r *memPaymentRepo) CreatePayment(p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// mirrors the schema constraint: expires_at >= created_at
	if p.ExpiresAt.Before(p.CreatedAt) {
		return fmt.Errorf("payments check violation: expires_at < created_at")
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetPaymentByID(id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) UpdatePaymentStatus(id string, from, to domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.Status != from {
		return domain.ErrInvalidState
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memPaymentRepo) MarkProcessing(id string, chain domain.Chain, wallet string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.Status != domain.StatusPending {
		return domain.ErrInvalidState
	}
	p.Status = domain.StatusProcessing
	p.Chain = chain
	p.WalletAddress = wallet
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memPaymentRepo) SetTxHash(id, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.TxHash = txHash
	return nil
}

func (r *memPaymentRepo) FindExpiredPayments(now time.Time) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.Status == domain.StatusPending && now.After(p.ExpiresAt) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) GetPayments(filters domain.PaymentFilters, page, limit int64) ([]*domain.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []*domain.PaymentEvent
}

func (r *memEventRepo) AppendEvent(e *domain.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *memEventRepo) GetEventsByPaymentID(id string) ([]*domain.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentEvent
	for _, e := range r.events {
		if e.PaymentID == id {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memEventRepo) byType(id string, t domain.PaymentEventType) []*domain.PaymentEvent {
	all, _ := r.GetEventsByPaymentID(id)
	var out []*domain.PaymentEvent
	for _, e := range all {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type memWalletRepo struct {
	mu      sync.Mutex
	records map[string]*domain.WalletBalanceRecord
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{records: make(map[string]*domain.WalletBalanceRecord)}
}

func (r *memWalletRepo) RecordActivity(address string, chain domain.Chain, amount decimal.Decimal, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := address + "/" + string(chain)
	rec, ok := r.records[key]
	if !ok {
		rec = &domain.WalletBalanceRecord{Address: address, Chain: chain}
		r.records[key] = rec
	}
	rec.TotalHandled = rec.TotalHandled.Add(amount)
	rec.LastActivity = at
	return nil
}

func (r *memWalletRepo) ListWallets() ([]*domain.WalletBalanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WalletBalanceRecord
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

// stubChainClient scripts the transfer outcome per call.
type stubChainClient struct {
	chain    domain.Chain
	balance  decimal.Decimal
	transfer func(from, to string, amount decimal.Decimal) (string, error)

	mu        sync.Mutex
	transfers int
}

func (c *stubChainClient) Chain() domain.Chain { return c.chain }
func (c *stubChainClient) Decimals() int32     { return 6 }

func (c *stubChainClient) GetUsdtBalance(ctx context.Context, address string) decimal.Decimal {
	return c.balance
}

func (c *stubChainClient) GetAllowance(ctx context.Context, owner, spender string) decimal.Decimal {
	return decimal.Zero
}

func (c *stubChainClient) SubmitApproval(ctx context.Context, owner, spender string, amount decimal.Decimal) (string, error) {
	return "", domain.ErrSubmissionFailed
}

func (c *stubChainClient) SubmitDelegatedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	c.mu.Lock()
	c.transfers++
	c.mu.Unlock()
	if c.transfer != nil {
		return c.transfer(from, to, amount)
	}
	return "0xstubhash", nil
}

func (c *stubChainClient) transferCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transfers
}

type stubRegistry struct {
	clients map[domain.Chain]domain.ChainClient
}

func (r *stubRegistry) Client(chain domain.Chain) (domain.ChainClient, error) {
	c, ok := r.clients[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}
	return c, nil
}

func (r *stubRegistry) Chains() []domain.Chain {
	var out []domain.Chain
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

type memPublisher struct {
	mu     sync.Mutex
	events []publisher.PaymentEvent
}

func (p *memPublisher) PublishPayment(e publisher.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type memWebhook struct {
	mu    sync.Mutex
	calls []notifier.WebhookPayload
}

func (w *memWebhook) SendCallback(url string, payload notifier.WebhookPayload) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, payload)
}

type memOperator struct {
	mu    sync.Mutex
	texts []string
}

func (o *memOperator) Notify(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.texts = append(o.texts, text)
}
