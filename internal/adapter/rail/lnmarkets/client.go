// Package lnmarkets is the exchange rail backed by the LN Markets v2 REST API.
package lnmarkets

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/adapter/rail"
	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
	"github.com/iho/lnstable/internal/usecase"
)

var _ usecase.ExchangeRail = (*Client)(nil)

const (
	mainnetURL = "https://api.lnmarkets.com"
	testnetURL = "https://api.testnet.lnmarkets.com"
	apiPrefix  = "/v2"
)

// Config configures the LN Markets client. BaseURL overrides the network default.
type Config struct {
	Key        string
	Secret     string
	Passphrase string
	Network    string
	BaseURL    string
	Timeout    time.Duration
}

// Client talks to LN Markets with HMAC-signed requests.
type Client struct {
	http *rail.Client
	cfg  Config
	now  func() time.Time
}

// New creates a new LN Markets client.
func New(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	return &Client{
		http: rail.NewClient("lnmarkets", baseURL(cfg), cfg.Timeout, m, logger),
		cfg:  cfg,
		now:  time.Now,
	}
}

func baseURL(cfg Config) string {
	switch {
	case cfg.BaseURL != "":
		return cfg.BaseURL
	case cfg.Network == "testnet":
		return testnetURL
	default:
		return mainnetURL
	}
}

type userResponse struct {
	UID                 string          `json:"uid"`
	Balance             decimal.Decimal `json:"balance"`
	SyntheticUSDBalance decimal.Decimal `json:"synthetic_usd_balance"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type depositResponse struct {
	DepositID      string `json:"depositId"`
	PaymentRequest string `json:"paymentRequest"`
}

type withdrawRequest struct {
	Invoice string `json:"invoice"`
}

type withdrawResponse struct {
	ID           string          `json:"id"`
	PaymentHash  string          `json:"payment_hash"`
	PaymentHash2 string          `json:"paymentHash"`
	Amount       int64           `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
}

type swapRequest struct {
	InAsset  string      `json:"in_asset"`
	OutAsset string      `json:"out_asset"`
	InAmount json.Number `json:"in_amount"`
}

type swapResponse struct {
	InAsset      string           `json:"in_asset"`
	OutAsset     string           `json:"out_asset"`
	InAmount     decimal.Decimal  `json:"in_amount"`
	OutAmount    decimal.Decimal  `json:"out_amount"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
}

// sign sets the LN Markets authentication headers. The signature covers
// timestamp, method, path and the JSON body (or query string for GET).
func (c *Client) sign(req *http.Request, body []byte) {
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	params := string(body)
	if req.Method == http.MethodGet || req.Method == http.MethodDelete {
		params = req.URL.RawQuery
	}

	req.Header.Set("LNM-ACCESS-KEY", c.cfg.Key)
	req.Header.Set("LNM-ACCESS-PASSPHRASE", c.cfg.Passphrase)
	req.Header.Set("LNM-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("LNM-ACCESS-SIGNATURE", Signature(c.cfg.Secret, timestamp, req.Method, req.URL.Path, params))
}

// Signature computes base64(HMAC-SHA256(secret, timestamp+method+path+params)).
func Signature(secret, timestamp, method, path, params string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + params))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	return c.http.Do(ctx, rail.Request{
		Operation: operation,
		Method:    method,
		Path:      apiPrefix + path,
		Body:      body,
		Sign:      c.sign,
	}, out)
}

// Ping checks that the credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "user", http.MethodGet, "/user", nil, &userResponse{})
}

// Liquidity is the exchange account balance: satoshis for BTC, dollars for USD.
func (c *Client) Liquidity(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	var user userResponse
	if err := c.do(ctx, "user", http.MethodGet, "/user", nil, &user); err != nil {
		return decimal.Zero, err
	}

	switch currency {
	case domain.CurrencyBTC:
		return user.Balance, nil
	case domain.CurrencyUSD:
		return user.SyntheticUSDBalance, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported currency %q", domain.ErrValidation, currency)
	}
}

// RequestDeposit asks for a bolt11 request that credits amountSat to the account.
func (c *Client) RequestDeposit(ctx context.Context, amountSat int64) (string, error) {
	var resp depositResponse
	if err := c.do(ctx, "deposit", http.MethodPost, "/user/deposit", depositRequest{Amount: amountSat}, &resp); err != nil {
		return "", err
	}
	return resp.PaymentRequest, nil
}

// Withdraw pays paymentRequest from the exchange account.
func (c *Client) Withdraw(ctx context.Context, paymentRequest string) (*domain.PaymentResult, error) {
	var resp withdrawResponse
	if err := c.do(ctx, "withdraw", http.MethodPost, "/user/withdraw", withdrawRequest{Invoice: paymentRequest}, &resp); err != nil {
		return nil, err
	}

	id := resp.PaymentHash
	if id == "" {
		id = resp.PaymentHash2
	}
	if id == "" {
		id = resp.ID
	}
	return &domain.PaymentResult{PaymentID: id, FeePaid: resp.Fee}, nil
}

// Swap converts amount of from into to at the exchange's current rate.
func (c *Client) Swap(ctx context.Context, from, to domain.Currency, amount decimal.Decimal) (*domain.SwapResult, error) {
	var resp swapResponse
	err := c.do(ctx, "swap", http.MethodPost, "/swap", swapRequest{
		InAsset:  from.String(),
		OutAsset: to.String(),
		InAmount: json.Number(amount.String()),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &domain.SwapResult{
		InputAmount:  resp.InAmount,
		OutputAmount: resp.OutAmount,
		Rate:         resp.ExchangeRate,
	}, nil
}
