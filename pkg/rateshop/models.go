package rateshop

import (
	"errors"
	"fmt"
	"time"
)

// Money represents a monetary amount.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Dimensions represents freight item dimensions in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Item is a single freight line on a rate request.
type Item struct {
	Quantity     int         `json:"quantity"`
	WeightLbs    float64     `json:"weight_lbs"`
	Dimensions   *Dimensions `json:"dimensions,omitempty"`
	FreightClass float64     `json:"freight_class,omitempty"` // NMFC class, 0 = unclassified
	Commodity    string      `json:"commodity,omitempty"`
}

// Request describes a shipment to be priced. It is constructed per call and
// never persisted.
type Request struct {
	OriginZip      string     `json:"origin_zip"`
	DestinationZip string     `json:"destination_zip"`
	Items          []Item     `json:"items"`
	PickupDate     *time.Time `json:"pickup_date,omitempty"`
	Accessorials   []string   `json:"accessorials,omitempty"`

	// Carriers limits the fan-out to specific carrier codes.
	// Empty = the registry's default set.
	Carriers []string `json:"carriers,omitempty"`
}

// Validation errors for rate requests.
var (
	ErrNoItems        = errors.New("rate request has no freight items")
	ErrMissingLane    = errors.New("rate request requires origin and destination ZIP")
	ErrInvalidWeight  = errors.New("freight item weight must be positive")
	ErrInvalidPieces  = errors.New("freight item quantity must be positive")
)

// Validate checks the request invariants: a lane, a non-empty item list, and
// positive weights and quantities.
func (r *Request) Validate() error {
	if r.OriginZip == "" || r.DestinationZip == "" {
		return ErrMissingLane
	}
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range r.Items {
		if item.WeightLbs <= 0 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidWeight)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidPieces)
		}
	}
	return nil
}

// TotalWeightLbs returns the combined weight of all items.
func (r *Request) TotalWeightLbs() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.WeightLbs * float64(item.Quantity)
	}
	return total
}

// Pieces returns the total piece count across all items.
func (r *Request) Pieces() int {
	var total int
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

// Rate is one carrier's quoted price for a request.
type Rate struct {
	RateID        string     `json:"rate_id"`
	CarrierName   string     `json:"carrier_name"`
	CarrierCode   string     `json:"carrier_code"`
	ServiceName   string     `json:"service_name"`
	TransitDays   int        `json:"transit_days"`
	TotalPrice    Money      `json:"total_price"`
	BasePrice     Money      `json:"base_price"`
	FuelSurcharge Money      `json:"fuel_surcharge"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Result is the outcome of one carrier's rate call. Exactly one of Rate or
// Err is populated.
type Result struct {
	Carrier     string `json:"carrier"`
	Rate        *Rate  `json:"rate,omitempty"`
	Err         string `json:"error,omitempty"`
	Recommended bool   `json:"recommended,omitempty"`
}

// OK reports whether the carrier returned a usable rate.
func (r Result) OK() bool {
	return r.Err == "" && r.Rate != nil
}
