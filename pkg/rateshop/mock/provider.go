// Package mock provides a mock rate provider for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/freightflow/gateway/pkg/rateshop"
)

// Provider is a mock rate provider for testing. The zero-configured provider
// returns a deterministic rate derived from its carrier code.
type Provider struct {
	code string

	// Delay is applied before responding, to simulate provider latency.
	Delay time.Duration

	// Err, when set, is returned from every Quote call.
	Err error

	// OnQuote overrides the default quote behavior entirely.
	OnQuote func(ctx context.Context, req *rateshop.Request) (*rateshop.Rate, error)
}

// New creates a new mock provider for the given carrier code.
func New(code string) *Provider {
	return &Provider{code: code}
}

// Code returns the carrier code.
func (p *Provider) Code() string {
	return p.code
}

// Quote returns a deterministic mock rate, or the configured error.
func (p *Provider) Quote(ctx context.Context, req *rateshop.Request) (*rateshop.Rate, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.OnQuote != nil {
		return p.OnQuote(ctx, req)
	}
	if p.Err != nil {
		return nil, p.Err
	}

	// Derive a stable price from the carrier code so different mocks rank
	// differently in tests.
	base := 400.0
	for _, c := range p.code {
		base += float64(c % 16)
	}
	fuel := base * 0.15
	expiresAt := time.Now().Add(30 * time.Minute)

	return &rateshop.Rate{
		RateID:        fmt.Sprintf("%s-rate-1", p.code),
		CarrierName:   fmt.Sprintf("%s Freight", p.code),
		CarrierCode:   p.code,
		ServiceName:   "Standard LTL",
		TransitDays:   3 + len(p.code)%3,
		TotalPrice:    rateshop.Money{Amount: base + fuel, Currency: "USD"},
		BasePrice:     rateshop.Money{Amount: base, Currency: "USD"},
		FuelSurcharge: rateshop.Money{Amount: fuel, Currency: "USD"},
		ExpiresAt:     &expiresAt,
	}, nil
}

var _ rateshop.Provider = (*Provider)(nil)
