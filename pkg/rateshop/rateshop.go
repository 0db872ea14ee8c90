// Package rateshop provides multi-carrier freight rate aggregation.
package rateshop

import (
	"context"
)

// Provider defines the interface a carrier rate source must implement.
type Provider interface {
	// Code returns the carrier identifier (e.g., "TAI", "EXLA", "ECHO").
	Code() string

	// Quote returns a spot rate for the given shipment, or an error if the
	// carrier cannot price the lane.
	Quote(ctx context.Context, req *Request) (*Rate, error)
}
