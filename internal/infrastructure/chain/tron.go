package chain

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

// TronAdapter talks to a TronGrid-style HTTP API. Tron has no unified
// RPC; contract reads go through triggerconstantcontract, writes are
// built by the node, signed locally over the transaction id and
// broadcast separately.
type TronAdapter struct {
	apiURL       string
	httpClient   *http.Client
	token        string // hex, 41-prefixed
	spender      string
	decimals     int32
	feeLimit     int64
	operatorKey  *ecdsa.PrivateKey
	operatorAddr string // hex, 41-prefixed
}

func NewTronAdapter(cfg config.ChainConfig) (*TronAdapter, error) {
	token, err := tronAddressToHex(cfg.UsdtContract)
	if err != nil {
		return nil, fmt.Errorf("parsing usdt contract address: %w", err)
	}
	spender, err := tronAddressToHex(cfg.SpenderAddress)
	if err != nil {
		return nil, fmt.Errorf("parsing spender address: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing tron operator key: %w", err)
	}
	ethAddr := crypto.PubkeyToAddress(key.PublicKey)

	timeout := time.Duration(cfg.RequestTimeoutS) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TronAdapter{
		apiURL:       strings.TrimRight(cfg.RPCURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		token:        token,
		spender:      spender,
		decimals:     cfg.UsdtDecimals,
		feeLimit:     cfg.FeeLimitSun,
		operatorKey:  key,
		operatorAddr: "41" + hex.EncodeToString(ethAddr.Bytes()),
	}, nil
}

func (a *TronAdapter) Chain() domain.Chain { return domain.ChainTron }
func (a *TronAdapter) Decimals() int32     { return a.decimals }

func (a *TronAdapter) GetUsdtBalance(ctx context.Context, address string) decimal.Decimal {
	owner, err := tronAddressToHex(address)
	if err != nil {
		slog.Warn("balance read failed", "chain", domain.ChainTron, "address", address, "error", err.Error())
		return decimal.Zero
	}

	balance, err := a.constantCall(ctx, owner, "balanceOf(address)", padTronAddress(owner))
	if err != nil {
		slog.Warn("balance read failed", "chain", domain.ChainTron, "address", address, "error", err.Error())
		return decimal.Zero
	}
	return FromTokenUnits(balance, a.decimals)
}

func (a *TronAdapter) GetAllowance(ctx context.Context, owner, spender string) decimal.Decimal {
	ownerHex, err := tronAddressToHex(owner)
	if err != nil {
		slog.Warn("allowance read failed", "chain", domain.ChainTron, "owner", owner, "error", err.Error())
		return decimal.Zero
	}
	spenderHex, err := tronAddressToHex(spender)
	if err != nil {
		slog.Warn("allowance read failed", "chain", domain.ChainTron, "owner", owner, "error", err.Error())
		return decimal.Zero
	}

	allowance, err := a.constantCall(ctx, ownerHex, "allowance(address,address)",
		padTronAddress(ownerHex)+padTronAddress(spenderHex))
	if err != nil {
		slog.Warn("allowance read failed", "chain", domain.ChainTron, "owner", owner, "error", err.Error())
		return decimal.Zero
	}
	return FromTokenUnits(allowance, a.decimals)
}

func (a *TronAdapter) SubmitApproval(ctx context.Context, owner, spender string, amount decimal.Decimal) (string, error) {
	ownerHex, err := tronAddressToHex(owner)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	if ownerHex != a.operatorAddr {
		return "", fmt.Errorf("%w: no signing key for %s", domain.ErrSubmissionFailed, owner)
	}
	spenderHex, err := tronAddressToHex(spender)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	param := padTronAddress(spenderHex) + padTronUint(ToTokenUnits(amount, a.decimals))
	return a.submit(ctx, "approve(address,uint256)", param)
}

func (a *TronAdapter) SubmitDelegatedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	fromHex, err := tronAddressToHex(from)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	toHex, err := tronAddressToHex(to)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	raw := ToTokenUnits(amount, a.decimals)

	allowance, err := a.constantCall(ctx, a.operatorAddr, "allowance(address,address)",
		padTronAddress(fromHex)+padTronAddress(a.spender))
	if err != nil {
		return "", fmt.Errorf("%w: allowance check: %v", domain.ErrSubmissionFailed, err)
	}
	if allowance.Cmp(raw) < 0 {
		return "", fmt.Errorf("%w: approved %s, need %s", domain.ErrInsufficientAllowance,
			FromTokenUnits(allowance, a.decimals), amount)
	}

	balance, err := a.constantCall(ctx, a.operatorAddr, "balanceOf(address)", padTronAddress(fromHex))
	if err != nil {
		return "", fmt.Errorf("%w: balance check: %v", domain.ErrSubmissionFailed, err)
	}
	if balance.Cmp(raw) < 0 {
		return "", fmt.Errorf("%w: wallet holds %s, need %s", domain.ErrInsufficientFunds,
			FromTokenUnits(balance, a.decimals), amount)
	}

	param := padTronAddress(fromHex) + padTronAddress(toHex) + padTronUint(raw)
	return a.submit(ctx, "transferFrom(address,address,uint256)", param)
}

// constantCall executes a read-only contract call and decodes the single
// uint256 result.
func (a *TronAdapter) constantCall(ctx context.Context, owner, selector, parameter string) (*big.Int, error) {
	body, err := a.post(ctx, "/wallet/triggerconstantcontract", map[string]interface{}{
		"owner_address":     owner,
		"contract_address":  a.token,
		"function_selector": selector,
		"parameter":         parameter,
	})
	if err != nil {
		return nil, err
	}

	if res := gjson.GetBytes(body, "result.result"); res.Exists() && !res.Bool() {
		return nil, fmt.Errorf("constant call rejected: %s", decodeTronMessage(gjson.GetBytes(body, "result.message").String()))
	}

	constant := gjson.GetBytes(body, "constant_result.0").String()
	if constant == "" {
		return nil, fmt.Errorf("empty constant_result for %s", selector)
	}

	value, ok := new(big.Int).SetString(constant, 16)
	if !ok {
		return nil, fmt.Errorf("bad constant_result %q", constant)
	}
	return value, nil
}

// submit builds the transaction on the node, signs its id locally with
// the operator key and broadcasts it.
func (a *TronAdapter) submit(ctx context.Context, selector, parameter string) (string, error) {
	body, err := a.post(ctx, "/wallet/triggersmartcontract", map[string]interface{}{
		"owner_address":     a.operatorAddr,
		"contract_address":  a.token,
		"function_selector": selector,
		"parameter":         parameter,
		"fee_limit":         a.feeLimit,
		"call_value":        0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	if res := gjson.GetBytes(body, "result.result"); res.Exists() && !res.Bool() {
		return "", fmt.Errorf("%w: %s", domain.ErrSubmissionFailed,
			decodeTronMessage(gjson.GetBytes(body, "result.message").String()))
	}

	txJSON := gjson.GetBytes(body, "transaction")
	if !txJSON.Exists() {
		return "", fmt.Errorf("%w: node returned no transaction", domain.ErrSubmissionFailed)
	}

	rawDataHex := txJSON.Get("raw_data_hex").String()
	rawData, err := hex.DecodeString(rawDataHex)
	if err != nil {
		return "", fmt.Errorf("%w: bad raw_data_hex: %v", domain.ErrSubmissionFailed, err)
	}

	// txID is sha256 of the raw transaction; the signature covers it.
	txID := sha256.Sum256(rawData)
	signature, err := crypto.Sign(txID[:], a.operatorKey)
	if err != nil {
		return "", fmt.Errorf("%w: signing: %v", domain.ErrSubmissionFailed, err)
	}

	var tx map[string]interface{}
	if err := json.Unmarshal([]byte(txJSON.Raw), &tx); err != nil {
		return "", fmt.Errorf("%w: decoding transaction: %v", domain.ErrSubmissionFailed, err)
	}
	tx["signature"] = []string{hex.EncodeToString(signature)}

	respBody, err := a.post(ctx, "/wallet/broadcasttransaction", tx)
	if err != nil {
		return "", fmt.Errorf("%w: broadcast: %v", domain.ErrSubmissionFailed, err)
	}
	if !gjson.GetBytes(respBody, "result").Bool() {
		return "", fmt.Errorf("%w: broadcast rejected: %s", domain.ErrSubmissionFailed,
			gjson.GetBytes(respBody, "message").String())
	}

	return hex.EncodeToString(txID[:]), nil
}

func (a *TronAdapter) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node returned %s: %s", resp.Status, respBody)
	}

	return respBody, nil
}

// tronAddressToHex accepts a base58check (T...) or hex (41...) address
// and returns the 21-byte hex form.
func tronAddressToHex(address string) (string, error) {
	if strings.HasPrefix(address, "41") && len(address) == 42 {
		if _, err := hex.DecodeString(address); err == nil {
			return strings.ToLower(address), nil
		}
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return "", fmt.Errorf("decoding address %q: %w", address, err)
	}
	if len(decoded) != 25 {
		return "", fmt.Errorf("address %q has unexpected length", address)
	}

	payload, checksum := decoded[:21], decoded[21:]
	h1 := sha256.Sum256(payload)
	h2 := sha256.Sum256(h1[:])
	if !bytes.Equal(checksum, h2[:4]) {
		return "", fmt.Errorf("address %q checksum mismatch", address)
	}
	if payload[0] != 0x41 {
		return "", fmt.Errorf("address %q is not a tron address", address)
	}

	return hex.EncodeToString(payload), nil
}

// padTronAddress left-pads the 20-byte body of a 41-prefixed address to
// a 32-byte ABI word.
func padTronAddress(hexAddr string) string {
	return strings.Repeat("0", 24) + hexAddr[2:]
}

func padTronUint(v *big.Int) string {
	s := v.Text(16)
	return strings.Repeat("0", 64-len(s)) + s
}

// decodeTronMessage decodes the hex-encoded error message the node
// returns on rejected calls.
func decodeTronMessage(msg string) string {
	if decoded, err := hex.DecodeString(msg); err == nil {
		return string(decoded)
	}
	return msg
}
