package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/usecase"
)

func TestSwapRequest_DecodesStringAndNumberValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want decimal.Decimal
	}{
		{name: "number", body: `{"currency":"USD","value":1500}`, want: decimal.NewFromInt(1500)},
		{name: "string", body: `{"currency":"BTC","value":"12.34"}`, want: decimal.RequireFromString("12.34")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SwapRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got := req.ToUseCaseInput("satoshi1")
			if got.Username != "satoshi1" || !got.Value.Equal(tt.want) {
				t.Fatalf("ToUseCaseInput() = %+v, want value %s", got, tt.want)
			}
		})
	}
}

func TestWebhookRequest_ToUseCaseInput(t *testing.T) {
	var req WebhookRequest
	body := `{"bolt11":"lnbc1","payment_hash":"h1","amount":21000,"memo":"ignored"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := usecase.WebhookInput{Bolt11: "lnbc1", PaymentHash: "h1", AmountMsat: 21000}
	if got := req.ToUseCaseInput(); got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCredentialsAndWithdrawRequests(t *testing.T) {
	creds := (&CredentialsRequest{Username: "satoshi1", Password: "hunter22"}).ToUseCaseInput()
	if creds.Username != "satoshi1" || creds.Password != "hunter22" {
		t.Fatalf("unexpected credentials input: %+v", creds)
	}

	withdraw := (&WithdrawRequest{PaymentRequest: "lnbc1"}).ToUseCaseInput("satoshi1")
	if withdraw != (usecase.WithdrawInput{Username: "satoshi1", PaymentRequest: "lnbc1"}) {
		t.Fatalf("unexpected withdraw input: %+v", withdraw)
	}
}
