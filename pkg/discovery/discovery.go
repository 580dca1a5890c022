// Package discovery defines the contract between the connection layer
// and whatever finds daemons on the network. The core never runs mDNS
// itself; a UI layer resolves candidates and hands them over.
package discovery

import "context"

// Candidate is one reachable daemon.
type Candidate struct {
	// Name is the human-readable daemon name shown in pickers.
	Name string `json:"name"`

	// Address is the daemon's host or IP.
	Address string `json:"address"`

	// Port is the daemon's websocket port.
	Port int `json:"port"`
}

// Resolver produces connection candidates.
type Resolver interface {
	// Resolve returns the currently known candidates. Implementations
	// may block on network activity, bounded by ctx.
	Resolve(ctx context.Context) ([]Candidate, error)
}

// Static is a Resolver over a fixed candidate list, for tests and for
// CLI invocations where the address is given explicitly.
type Static []Candidate

// Resolve returns the fixed list.
func (s Static) Resolve(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Candidate(nil), s...), nil
}
