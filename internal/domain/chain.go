package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Chain string

const (
	ChainPolygon Chain = "polygon"
	ChainBSC     Chain = "bsc"
	ChainTron    Chain = "tron"
)

func (c Chain) Valid() bool {
	switch c {
	case ChainPolygon, ChainBSC, ChainTron:
		return true
	}
	return false
}

// ChainClient is the uniform capability set over one supported network.
// One implementation per chain family: the EVM networks share an adapter
// parameterized by chain id and token decimals, Tron has its own.
//
// Read operations (balance, allowance) fail soft: on a network error they
// return zero and log a warning instead of propagating, since balance
// checks are advisory and must not block settlement. Write operations
// propagate typed errors (ErrInsufficientAllowance, ErrInsufficientFunds,
// ErrSubmissionFailed).
type ChainClient interface {
	Chain() Chain
	// Decimals is the USDT token precision on this network. All amount
	// arithmetic crossing the adapter boundary converts through it.
	Decimals() int32

	GetUsdtBalance(ctx context.Context, address string) decimal.Decimal
	GetAllowance(ctx context.Context, owner, spender string) decimal.Decimal

	SubmitApproval(ctx context.Context, owner, spender string, amount decimal.Decimal) (string, error)
	SubmitDelegatedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error)
}

// ChainRegistry resolves the adapter selected at startup for a network.
type ChainRegistry interface {
	Client(chain Chain) (ChainClient, error)
	Chains() []Chain
}
