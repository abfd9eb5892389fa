// Package lnbits is the invoice rail backed by an LNbits wallet.
package lnbits

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/adapter/rail"
	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
	"github.com/iho/lnstable/internal/usecase"
)

var _ usecase.InvoiceRail = (*Client)(nil)

// feeLookupLimit is how many recent payments are scanned for the fee of a
// payment that was just made.
const feeLookupLimit = 5

// Config configures the LNbits client.
type Config struct {
	Host       string
	AdminKey   string
	InvoiceKey string
	WebhookURL string
	Expiry     time.Duration
	Timeout    time.Duration
}

// Client talks to the LNbits wallet API.
type Client struct {
	http   *rail.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates a new LNbits client.
func New(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	return &Client{
		http:   rail.NewClient("lnbits", cfg.Host, cfg.Timeout, m, logger),
		cfg:    cfg,
		logger: logger.With().Str("rail", "lnbits").Logger(),
	}
}

type walletResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type createInvoiceRequest struct {
	Out     bool   `json:"out"`
	Amount  int64  `json:"amount"`
	Memo    string `json:"memo"`
	Expiry  int64  `json:"expiry,omitempty"`
	Webhook string `json:"webhook,omitempty"`
}

type payInvoiceRequest struct {
	Out    bool   `json:"out"`
	Bolt11 string `json:"bolt11"`
}

type paymentCreated struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
}

type paymentStatus struct {
	Paid bool `json:"paid"`
}

type decodeRequest struct {
	Data string `json:"data"`
}

type decodeResponse struct {
	PaymentHash string `json:"payment_hash"`
	AmountMsat  int64  `json:"amount_msat"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Expiry      int64  `json:"expiry"`
	Date        int64  `json:"date"`
}

type paymentEntry struct {
	CheckingID  string  `json:"checking_id"`
	PaymentHash string  `json:"payment_hash"`
	Amount      int64   `json:"amount"`
	Fee         float64 `json:"fee"`
	Pending     bool    `json:"pending"`
	Time        int64   `json:"time"`
}

func (c *Client) header(key string) http.Header {
	return http.Header{"X-Api-Key": {key}}
}

// Ping checks that the wallet exists and the invoice key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.wallet(ctx)
	return err
}

func (c *Client) wallet(ctx context.Context) (*walletResponse, error) {
	var wallet walletResponse
	err := c.http.Do(ctx, rail.Request{
		Operation: "wallet",
		Method:    http.MethodGet,
		Path:      "/api/v1/wallet",
		Header:    c.header(c.cfg.InvoiceKey),
	}, &wallet)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// WalletBalance returns the spendable balance in whole satoshis.
func (c *Client) WalletBalance(ctx context.Context) (int64, error) {
	wallet, err := c.wallet(ctx)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(float64(wallet.Balance) / 1000)), nil
}

// CreateInvoice issues a bolt11 request for amountSat. LNbits calls the
// configured webhook once it is paid.
func (c *Client) CreateInvoice(ctx context.Context, amountSat int64, memo string) (*domain.Invoice, error) {
	var created paymentCreated
	err := c.http.Do(ctx, rail.Request{
		Operation: "create_invoice",
		Method:    http.MethodPost,
		Path:      "/api/v1/payments",
		Header:    c.header(c.cfg.InvoiceKey),
		Body: createInvoiceRequest{
			Out:     false,
			Amount:  amountSat,
			Memo:    memo,
			Expiry:  int64(c.cfg.Expiry / time.Second),
			Webhook: c.cfg.WebhookURL,
		},
	}, &created)
	if err != nil {
		return nil, err
	}
	if created.PaymentHash == "" || created.PaymentRequest == "" {
		return nil, errors.New("lnbits create_invoice: response without payment hash")
	}

	return &domain.Invoice{
		PaymentHash:    created.PaymentHash,
		PaymentRequest: created.PaymentRequest,
		Amount:         amountSat,
		Memo:           memo,
		Expiry:         c.cfg.Expiry,
	}, nil
}

// PayInvoice pays paymentRequest from the wallet and looks the payment up in
// the recent history to learn the routing fee.
func (c *Client) PayInvoice(ctx context.Context, paymentRequest string) (*domain.PaymentResult, error) {
	var paid paymentCreated
	err := c.http.Do(ctx, rail.Request{
		Operation: "pay_invoice",
		Method:    http.MethodPost,
		Path:      "/api/v1/payments",
		Header:    c.header(c.cfg.AdminKey),
		Body:      payInvoiceRequest{Out: true, Bolt11: paymentRequest},
	}, &paid)
	if err != nil {
		return nil, err
	}
	if paid.PaymentHash == "" {
		return &domain.PaymentResult{}, nil
	}

	result := &domain.PaymentResult{PaymentID: paid.PaymentHash, FeePaid: decimal.Zero}

	payments, err := c.ListPayments(ctx, feeLookupLimit)
	if err != nil {
		c.logger.Warn().Err(err).Str("payment_hash", paid.PaymentHash).Msg("fee lookup failed, assuming zero")
		return result, nil
	}
	for _, p := range payments {
		if p.PaymentHash == paid.PaymentHash {
			result.FeePaid = feeSat(p.FeeMsat)
			break
		}
	}
	return result, nil
}

// DecodeInvoice asks the wallet to decode a bolt11 request.
func (c *Client) DecodeInvoice(ctx context.Context, paymentRequest string) (*domain.DecodedInvoice, error) {
	var decoded decodeResponse
	err := c.http.Do(ctx, rail.Request{
		Operation: "decode_invoice",
		Method:    http.MethodPost,
		Path:      "/api/v1/payments/decode",
		Header:    c.header(c.cfg.InvoiceKey),
		Body:      decodeRequest{Data: paymentRequest},
	}, &decoded)
	if err != nil {
		return nil, err
	}
	if decoded.PaymentHash == "" {
		return nil, errors.New("lnbits decode_invoice: response without payment hash")
	}

	return &domain.DecodedInvoice{
		PaymentHash: decoded.PaymentHash,
		AmountMsat:  decoded.AmountMsat,
		Description: decoded.Description,
		Payee:       decoded.Payee,
		Expiry:      time.Duration(decoded.Expiry) * time.Second,
		Date:        time.Unix(decoded.Date, 0).UTC(),
	}, nil
}

// IsInvoicePaid reports whether the invoice with paymentHash has been paid.
func (c *Client) IsInvoicePaid(ctx context.Context, paymentHash string) (bool, error) {
	var status paymentStatus
	err := c.http.Do(ctx, rail.Request{
		Operation: "check_invoice",
		Method:    http.MethodGet,
		Path:      "/api/v1/payments/" + url.PathEscape(paymentHash),
		Header:    c.header(c.cfg.InvoiceKey),
	}, &status)
	if err != nil {
		return false, err
	}
	return status.Paid, nil
}

// ListPayments returns the newest limit payments of the wallet.
func (c *Client) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	var entries []paymentEntry
	err := c.http.Do(ctx, rail.Request{
		Operation: "list_payments",
		Method:    http.MethodGet,
		Path:      "/api/v1/payments",
		Query:     url.Values{"limit": {strconv.Itoa(limit)}},
		Header:    c.header(c.cfg.InvoiceKey),
	}, &entries)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(entries))
	for _, e := range entries {
		payments = append(payments, domain.Payment{
			PaymentHash: e.PaymentHash,
			Amount:      e.Amount,
			FeeMsat:     int64(e.Fee),
			Pending:     e.Pending,
			Time:        time.Unix(e.Time, 0).UTC(),
		})
	}
	return payments, nil
}

// feeSat converts a fee in millisatoshis (negative for outgoing payments)
// to whole satoshis, rounding to nearest.
func feeSat(feeMsat int64) decimal.Decimal {
	if feeMsat < 0 {
		feeMsat = -feeMsat
	}
	return decimal.NewFromInt(feeMsat).Div(decimal.NewFromInt(1000)).Round(0)
}
