// Package platform provides a rate provider backed by the data platform's
// per-carrier spot-rate endpoint groups.
package platform

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/freightflow/gateway/pkg/rateshop"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Requester is the generic authenticated request primitive exposed by the
// data platform client. Each carrier provider is routed through it against
// that carrier's endpoint group.
type Requester interface {
	Do(ctx context.Context, group, path, method string, body, out any) error
}

// StatusError is implemented by transport errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

// Config holds the per-carrier provider configuration.
type Config struct {
	Code  string // carrier identifier, e.g. "TAI"
	Name  string // display name, e.g. "TAI Freight"
	Group string // logical endpoint-group key for the carrier's rate API
}

// Provider adapts one carrier's spot-rate endpoint group to the
// rateshop.Provider interface.
type Provider struct {
	cfg    Config
	req    Requester
	logger *otelzap.Logger
}

// New creates a provider for a single carrier endpoint group.
func New(cfg Config, req Requester, logger *otelzap.Logger) *Provider {
	return &Provider{cfg: cfg, req: req, logger: logger}
}

// Code returns the carrier code.
func (p *Provider) Code() string {
	return p.cfg.Code
}

// spotRateRequest is the wire shape of the platform's rate-shop endpoint.
type spotRateRequest struct {
	OriginZip      string              `json:"origin_zip"`
	DestinationZip string              `json:"destination_zip"`
	WeightLbs      float64             `json:"weight_lbs"`
	Pieces         int                 `json:"pieces"`
	FreightClass   float64             `json:"freight_class,omitempty"`
	Dimensions     *rateshop.Dimensions `json:"dimensions,omitempty"`
	PickupDate     string              `json:"pickup_date,omitempty"`
	Accessorials   []string            `json:"accessorials,omitempty"`
}

// spotRateResponse is the wire shape of a single carrier rate.
type spotRateResponse struct {
	RateID        string  `json:"rate_id"`
	CarrierName   string  `json:"carrier_name"`
	CarrierCode   string  `json:"carrier_code"`
	ServiceType   string  `json:"service_type"`
	TransitDays   int     `json:"transit_days"`
	TotalPrice    float64 `json:"total_price"`
	BasePrice     float64 `json:"base_price"`
	FuelSurcharge float64 `json:"fuel_surcharge"`
	Currency      string  `json:"currency"`
	ExpiresAt     string  `json:"expires_at"`
}

// Quote requests a spot rate from the carrier's endpoint group.
func (p *Provider) Quote(ctx context.Context, req *rateshop.Request) (*rateshop.Rate, error) {
	apiReq := &spotRateRequest{
		OriginZip:      req.OriginZip,
		DestinationZip: req.DestinationZip,
		WeightLbs:      req.TotalWeightLbs(),
		Pieces:         req.Pieces(),
		Accessorials:   req.Accessorials,
	}
	if len(req.Items) > 0 {
		apiReq.FreightClass = req.Items[0].FreightClass
		apiReq.Dimensions = req.Items[0].Dimensions
	}
	if req.PickupDate != nil {
		apiReq.PickupDate = req.PickupDate.Format("2006-01-02")
	}

	var apiResp spotRateResponse
	if err := p.req.Do(ctx, p.cfg.Group, "/rates/shop", http.MethodPost, apiReq, &apiResp); err != nil {
		p.logger.Warn("carrier rate request failed",
			zap.String("carrier", p.cfg.Code),
			zap.Error(err),
		)
		return nil, p.wrapError(err)
	}

	return p.rateFromResponse(&apiResp), nil
}

func (p *Provider) rateFromResponse(resp *spotRateResponse) *rateshop.Rate {
	currency := resp.Currency
	if currency == "" {
		currency = "USD"
	}
	name := resp.CarrierName
	if name == "" {
		name = p.cfg.Name
	}
	code := resp.CarrierCode
	if code == "" {
		code = p.cfg.Code
	}

	rate := &rateshop.Rate{
		RateID:        resp.RateID,
		CarrierName:   name,
		CarrierCode:   code,
		ServiceName:   resp.ServiceType,
		TransitDays:   resp.TransitDays,
		TotalPrice:    rateshop.Money{Amount: resp.TotalPrice, Currency: currency},
		BasePrice:     rateshop.Money{Amount: resp.BasePrice, Currency: currency},
		FuelSurcharge: rateshop.Money{Amount: resp.FuelSurcharge, Currency: currency},
	}
	if resp.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
			rate.ExpiresAt = &t
		}
	}
	return rate
}

// wrapError maps transport failures to provider errors, keeping the
// server-provided message where one exists.
func (p *Provider) wrapError(err error) error {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		provErr := rateshop.NewProviderError(p.cfg.Code, errCode(statusErr.HTTPStatus()), statusErr.Error()).
			WithStatusCode(statusErr.HTTPStatus()).
			WithCause(err)
		switch statusErr.HTTPStatus() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return provErr.WithCause(rateshop.ErrAuthenticationFailed)
		case http.StatusTooManyRequests:
			return provErr.WithRetryable(true)
		case http.StatusNotFound:
			return provErr.WithCause(rateshop.ErrNoRatesForLane)
		}
		if statusErr.HTTPStatus() >= 500 {
			return provErr.WithRetryable(true)
		}
		return provErr
	}
	return rateshop.NewProviderError(p.cfg.Code, "TRANSPORT", "rate request failed").
		WithCause(err).
		WithRetryable(true)
}

func errCode(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "AUTH"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT"
	case http.StatusNotFound:
		return "NO_RATES"
	}
	if status >= 500 {
		return "UPSTREAM"
	}
	return "REQUEST"
}

var _ rateshop.Provider = (*Provider)(nil)
