package rateshop

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered carrier rate providers and fans rate requests
// out across them.
type Registry struct {
	providers map[string]Provider
	defaults  []string
	mu        sync.RWMutex
}

// NewRegistry creates a new provider registry. The default carrier set is
// queried when a request does not name carriers explicitly.
func NewRegistry(defaults ...string) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		defaults:  defaults,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Code()] = p
}

// Get returns a provider by carrier code.
func (r *Registry) Get(code string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[code]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCarrier, code)
}

// Codes returns the codes of all registered providers.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.providers))
	for code := range r.providers {
		codes = append(codes, code)
	}
	return codes
}

// Defaults returns the default carrier set.
func (r *Registry) Defaults() []string {
	out := make([]string, len(r.defaults))
	copy(out, r.defaults)
	return out
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Shop fans the request out to every requested carrier concurrently and waits
// for all calls to settle. One provider's failure never aborts the others;
// failures come back as failure-shaped results.
//
// The returned slice has exactly one entry per requested carrier, in the
// caller-specified order regardless of which provider responds first. An
// unknown carrier code yields a failure result rather than an error. An empty
// effective carrier set yields an empty slice.
func (r *Registry) Shop(ctx context.Context, req *Request) []Result {
	carriers := req.Carriers
	if len(carriers) == 0 {
		carriers = r.defaults
	}
	results := make([]Result, len(carriers))
	if len(carriers) == 0 {
		return results
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, code := range carriers {
		i, code := i, code
		g.Go(func() error {
			results[i] = r.quoteOne(ctx, code, req)
			return nil
		})
	}
	g.Wait()
	return results
}

// quoteOne resolves and calls a single provider, converting every failure
// mode, including a panicking provider, into a failure-shaped result.
func (r *Registry) quoteOne(ctx context.Context, code string, req *Request) (res Result) {
	res = Result{Carrier: code}
	defer func() {
		if rec := recover(); rec != nil {
			res.Rate = nil
			res.Err = "request failed"
		}
	}()

	p, err := r.Get(code)
	if err != nil {
		res.Err = ErrUnknownCarrier.Error()
		return res
	}

	rate, err := p.Quote(ctx, req)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Rate = rate
	return res
}
