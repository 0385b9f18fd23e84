package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	uc       *DefaultPaymentUsecase
	payments *memPaymentRepo
	events   *memEventRepo
	wallets  *memWalletRepo
	chain    *stubChainClient
	pub      *memPublisher
	webhook  *memWebhook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		payments: newMemPaymentRepo(),
		events:   &memEventRepo{},
		wallets:  newMemWalletRepo(),
		chain:    &stubChainClient{chain: domain.ChainPolygon},
		pub:      &memPublisher{},
		webhook:  &memWebhook{},
	}

	uc, err := NewDefaultPaymentUsecase(
		env.payments,
		env.events,
		env.wallets,
		&stubRegistry{clients: map[domain.Chain]domain.ChainClient{domain.ChainPolygon: env.chain}},
		map[domain.Chain]string{domain.ChainPolygon: "0xCollectionWallet"},
		env.pub,
		env.webhook,
		&memOperator{},
		nil,
		PaymentLimits{
			MinAmount:     decimal.NewFromInt(1),
			MaxAmount:     decimal.NewFromInt(10000),
			MaxTTLMinutes: 1440,
		},
	)
	require.NoError(t, err)

	env.uc = uc
	return env
}

func (e *testEnv) createPayment(t *testing.T, amount string, ttlMinutes int) *domain.Payment {
	t.Helper()
	p, err := e.uc.CreatePayment(context.Background(), "store-api", "order #42",
		decimal.RequireFromString(amount), "", ttlMinutes)
	require.NoError(t, err)
	return p
}

func TestCreatePayment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	testCases := []struct {
		name        string
		serviceName string
		amount      string
		ttlMinutes  int
	}{
		{"empty service name", "", "100", 30},
		{"amount below minimum", "store-api", "0.5", 30},
		{"amount above maximum", "store-api", "10001", 30},
		{"negative ttl", "store-api", "100", -1},
		{"ttl above maximum", "store-api", "100", 2000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.uc.CreatePayment(ctx, tc.serviceName, "", decimal.RequireFromString(tc.amount), "", tc.ttlMinutes)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreatePayment_Success(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPayment(t, "100", 30)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Empty(t, string(p.Chain))
	assert.True(t, p.ExpiresAt.After(p.CreatedAt))

	created := env.events.byType(p.ID, domain.EventCreated)
	require.Len(t, created, 1)
	assert.Contains(t, created[0].Data, "100")
	require.Len(t, env.pub.events, 1)
	assert.Equal(t, "pending", env.pub.events[0].Status)
}

func TestBeginSettlement_CompletesPayment(t *testing.T) {
	env := newTestEnv(t)
	env.chain.transfer = func(from, to string, amount decimal.Decimal) (string, error) {
		assert.Equal(t, "0xPayer", from)
		assert.Equal(t, "0xCollectionWallet", to)
		assert.True(t, amount.Equal(decimal.RequireFromString("100")))
		return "0xabc123", nil
	}

	p := env.createPayment(t, "100", 30)

	settled, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, settled.Status)
	assert.Equal(t, "0xabc123", settled.TxHash)
	assert.Equal(t, domain.ChainPolygon, settled.Chain)

	require.Len(t, env.events.byType(p.ID, domain.EventProcessingStarted), 1)
	require.Len(t, env.events.byType(p.ID, domain.EventCompleted), 1)

	wallets, err := env.wallets.ListWallets()
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "0xCollectionWallet", wallets[0].Address)
	assert.True(t, wallets[0].TotalHandled.Equal(decimal.RequireFromString("100")))
}

func TestBeginSettlement_UnknownPayment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.BeginSettlement(context.Background(), "no-such-id", domain.ChainPolygon, "0xPayer")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestBeginSettlement_UnsupportedChain(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPayment(t, "100", 30)

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.Chain("solana"), "0xPayer")
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestBeginSettlement_RecordsStatusChanges(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPayment(t, "100", 30)

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	require.NoError(t, err)

	changes := env.events.byType(p.ID, domain.EventStatusUpdated)
	require.Len(t, changes, 2)

	var first, second map[string]string
	require.NoError(t, json.Unmarshal([]byte(changes[0].Data), &first))
	require.NoError(t, json.Unmarshal([]byte(changes[1].Data), &second))
	assert.Equal(t, map[string]string{"from": "pending", "to": "processing"}, first)
	assert.Equal(t, map[string]string{"from": "processing", "to": "completed"}, second)
}

func TestCreatePayment_ZeroTTLEqualTimestamps(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPayment(t, "100", 0)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExpiresAt.Equal(stored.CreatedAt))
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestBeginSettlement_ZeroTTLExpiresImmediately(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPayment(t, "100", 0)

	env.uc.now = func() time.Time { return time.Now().Add(time.Second) }

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	assert.ErrorIs(t, err, domain.ErrPaymentExpired)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)
	require.Len(t, env.events.byType(p.ID, domain.EventExpired), 1)
	assert.Equal(t, 0, env.chain.transferCount())
}

func TestBeginSettlement_InsufficientAllowanceFailsPayment(t *testing.T) {
	env := newTestEnv(t)
	env.chain.transfer = func(from, to string, amount decimal.Decimal) (string, error) {
		return "", domain.ErrInsufficientAllowance
	}

	p := env.createPayment(t, "100", 30)

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)

	failed := env.events.byType(p.ID, domain.EventSettlementFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Data, "insufficient allowance")
}

func TestBeginSettlement_TransientFailureKeepsClaim(t *testing.T) {
	env := newTestEnv(t)
	env.chain.transfer = func(from, to string, amount decimal.Decimal) (string, error) {
		return "", domain.ErrSubmissionFailed
	}

	p := env.createPayment(t, "100", 30)

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
	require.Len(t, env.events.byType(p.ID, domain.EventSettlementAttempt), 1)

	// Same wallet retries and succeeds without a second claim event.
	env.chain.transfer = nil
	settled, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, settled.Status)
	assert.Len(t, env.events.byType(p.ID, domain.EventProcessingStarted), 1)
}

func TestBeginSettlement_SecondWalletLosesRace(t *testing.T) {
	env := newTestEnv(t)
	env.chain.transfer = func(from, to string, amount decimal.Decimal) (string, error) {
		return "", domain.ErrSubmissionFailed
	}

	p := env.createPayment(t, "100", 30)

	_, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xWalletA")
	require.ErrorIs(t, err, domain.ErrSubmissionFailed)

	_, err = env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xWalletB")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xWalletA", stored.WalletAddress)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPayment(t, "100", 30)

	settled, err := env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, settled.Status)

	err = env.uc.FailSettlement(context.Background(), p.ID, "late failure")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = env.uc.BeginSettlement(context.Background(), p.ID, domain.ChainPolygon, "0xPayer")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := env.payments.GetPaymentByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t)

	stale := env.createPayment(t, "100", 0)
	fresh := env.createPayment(t, "200", 60)

	env.uc.now = func() time.Time { return time.Now().Add(time.Minute) }
	require.NoError(t, env.uc.SweepExpired(context.Background()))

	staleStored, err := env.payments.GetPaymentByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, staleStored.Status)

	freshStored, err := env.payments.GetPaymentByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, freshStored.Status)
}

func TestGetPaymentEvents_UnknownPayment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.GetPaymentEvents("no-such-id")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
