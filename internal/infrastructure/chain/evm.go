package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// EVMAdapter serves both EVM networks; they differ only in chain id, RPC
// endpoint, token contract and token decimals.
type EVMAdapter struct {
	chain        domain.Chain
	client       *ethclient.Client
	erc20        abi.ABI
	token        common.Address
	spender      common.Address
	chainID      *big.Int
	decimals     int32
	gasLimit     uint64
	timeout      time.Duration
	operatorKey  *ecdsa.PrivateKey
	operatorAddr common.Address
}

func NewEVMAdapter(cfg config.ChainConfig) (*EVMAdapter, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s rpc: %w", cfg.Name, err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing %s operator key: %w", cfg.Name, err)
	}

	return &EVMAdapter{
		chain:        domain.Chain(cfg.Name),
		client:       client,
		erc20:        parsed,
		token:        common.HexToAddress(cfg.UsdtContract),
		spender:      common.HexToAddress(cfg.SpenderAddress),
		chainID:      big.NewInt(cfg.ChainID),
		decimals:     cfg.UsdtDecimals,
		gasLimit:     cfg.GasLimit,
		timeout:      time.Duration(cfg.RequestTimeoutS) * time.Second,
		operatorKey:  key,
		operatorAddr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (a *EVMAdapter) Chain() domain.Chain { return a.chain }
func (a *EVMAdapter) Decimals() int32     { return a.decimals }

// GetUsdtBalance is advisory: any RPC failure logs a warning and yields
// zero instead of blocking the caller.
func (a *EVMAdapter) GetUsdtBalance(ctx context.Context, address string) decimal.Decimal {
	balance, err := a.balanceOf(ctx, common.HexToAddress(address))
	if err != nil {
		slog.Warn("balance read failed", "chain", a.chain, "address", address, "error", err.Error())
		return decimal.Zero
	}
	return FromTokenUnits(balance, a.decimals)
}

func (a *EVMAdapter) GetAllowance(ctx context.Context, owner, spender string) decimal.Decimal {
	allowance, err := a.allowance(ctx, common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		slog.Warn("allowance read failed", "chain", a.chain, "owner", owner, "error", err.Error())
		return decimal.Zero
	}
	return FromTokenUnits(allowance, a.decimals)
}

// SubmitApproval broadcasts approve(spender, amount) signed by the
// operator key. Only wallets the service operates can be approved here;
// payer approvals arrive from the browser flow already signed.
func (a *EVMAdapter) SubmitApproval(ctx context.Context, owner, spender string, amount decimal.Decimal) (string, error) {
	if common.HexToAddress(owner) != a.operatorAddr {
		return "", fmt.Errorf("%w: no signing key for %s", domain.ErrSubmissionFailed, owner)
	}

	data, err := a.erc20.Pack("approve", common.HexToAddress(spender), ToTokenUnits(amount, a.decimals))
	if err != nil {
		return "", fmt.Errorf("packing approve: %w", err)
	}

	return a.submit(ctx, data)
}

// SubmitDelegatedTransfer executes transferFrom with the operator key
// after verifying allowance and balance. It never moves funds on a
// failed precondition, so ErrSubmissionFailed is safe to retry.
func (a *EVMAdapter) SubmitDelegatedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	fromAddr := common.HexToAddress(from)
	raw := ToTokenUnits(amount, a.decimals)

	allowance, err := a.allowance(ctx, fromAddr, a.spender)
	if err != nil {
		return "", fmt.Errorf("%w: allowance check: %v", domain.ErrSubmissionFailed, err)
	}
	if allowance.Cmp(raw) < 0 {
		return "", fmt.Errorf("%w: approved %s, need %s", domain.ErrInsufficientAllowance,
			FromTokenUnits(allowance, a.decimals), amount)
	}

	balance, err := a.balanceOf(ctx, fromAddr)
	if err != nil {
		return "", fmt.Errorf("%w: balance check: %v", domain.ErrSubmissionFailed, err)
	}
	if balance.Cmp(raw) < 0 {
		return "", fmt.Errorf("%w: wallet holds %s, need %s", domain.ErrInsufficientFunds,
			FromTokenUnits(balance, a.decimals), amount)
	}

	data, err := a.erc20.Pack("transferFrom", fromAddr, common.HexToAddress(to), raw)
	if err != nil {
		return "", fmt.Errorf("packing transferFrom: %w", err)
	}

	return a.submit(ctx, data)
}

func (a *EVMAdapter) balanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return a.readUint(ctx, "balanceOf", owner)
}

func (a *EVMAdapter) allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return a.readUint(ctx, "allowance", owner, spender)
}

func (a *EVMAdapter) readUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := a.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	out, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &a.token, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	results, err := a.erc20.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type", method)
	}

	return value, nil
}

func (a *EVMAdapter) submit(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	nonce, err := a.client.PendingNonceAt(ctx, a.operatorAddr)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", domain.ErrSubmissionFailed, err)
	}

	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: gas price: %v", domain.ErrSubmissionFailed, err)
	}

	tx := types.NewTransaction(nonce, a.token, big.NewInt(0), a.gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(a.chainID), a.operatorKey)
	if err != nil {
		return "", fmt.Errorf("%w: signing: %v", domain.ErrSubmissionFailed, err)
	}

	if err := a.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	return signed.Hash().Hex(), nil
}
