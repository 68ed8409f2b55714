package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient abstracts the HTTP transport for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPAdapter implements ports.NetworkAdapter against a chain gateway's
// REST API. Submit is deliberately single-shot: the gateway may have
// accepted a transfer whose response was lost, and resubmitting risks a
// double spend.
type HTTPAdapter struct {
	base    string
	client  HTTPClient
	timeout time.Duration
	log     zerolog.Logger
}

// NewHTTPAdapter creates an adapter for the gateway at base URL.
func NewHTTPAdapter(base string, timeout time.Duration, log zerolog.Logger) *HTTPAdapter {
	return &HTTPAdapter{
		base:    base,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
}

// NewHTTPAdapterWithClient creates an adapter using a custom transport.
func NewHTTPAdapterWithClient(base string, client HTTPClient, timeout time.Duration, log zerolog.Logger) *HTTPAdapter {
	return &HTTPAdapter{base: base, client: client, timeout: timeout, log: log}
}

type addressResponse struct {
	Address string `json:"address"`
}

type depositEntry struct {
	Ref    string `json:"ref"`
	Amount uint64 `json:"amount"`
}

type submitRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type submitResponse struct {
	Ref string `json:"ref"`
}

type gatewayError struct {
	Message string `json:"message"`
}

// DeriveAddress asks the gateway for the deposit address of a subaccount.
func (a *HTTPAdapter) DeriveAddress(subaccount string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	var resp addressResponse
	err := a.get(ctx, "/v1/addresses/"+url.PathEscape(subaccount), &resp)
	if err != nil {
		return "", err
	}
	if resp.Address == "" {
		return "", fmt.Errorf("gateway returned empty address")
	}
	return resp.Address, nil
}

// ValidateAddress checks a withdrawal destination with the gateway.
func (a *HTTPAdapter) ValidateAddress(address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"address": address})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v1/addresses/validate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("gateway rejected address: %s", readGatewayMessage(resp.Body))
	default:
		return domain.ErrExternalConnection{Code: resp.StatusCode, Message: readGatewayMessage(resp.Body)}
	}
}

// ListDeposits returns the deposits visible at the address.
func (a *HTTPAdapter) ListDeposits(ctx context.Context, address string) ([]ports.Deposit, error) {
	var entries []depositEntry
	err := a.get(ctx, "/v1/deposits?address="+url.QueryEscape(address), &entries)
	if err != nil {
		return nil, err
	}

	deposits := make([]ports.Deposit, 0, len(entries))
	for _, e := range entries {
		deposits = append(deposits, ports.Deposit(e))
	}
	return deposits, nil
}

// Submit sends value to the address. A non-2xx reply surfaces as
// domain.ErrExternalConnection carrying the gateway's status.
func (a *HTTPAdapter) Submit(ctx context.Context, address string, amount uint64) (string, error) {
	body, err := json.Marshal(submitRequest{Address: address, Amount: amount})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", domain.ErrExternalConnection{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.ErrExternalConnection{Code: resp.StatusCode, Message: readGatewayMessage(resp.Body)}
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding gateway response: %w", err)
	}
	if out.Ref == "" {
		return "", fmt.Errorf("gateway returned empty transfer ref")
	}

	a.log.Info().
		Str("address", address).
		Uint64("amount", amount).
		Str("ref", out.Ref).
		Msg("transfer submitted to gateway")
	return out.Ref, nil
}

func (a *HTTPAdapter) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ErrExternalConnection{Code: resp.StatusCode, Message: readGatewayMessage(resp.Body)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readGatewayMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	var ge gatewayError
	if json.Unmarshal(data, &ge) == nil && ge.Message != "" {
		return ge.Message
	}
	return string(data)
}
