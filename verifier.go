package shelfgate

import (
	"errors"

	"github.com/hartwellk/shelfgate/authz"
)

// NewVerifier constructs a server-verified permission resolver sharing the
// session's API client and metric registry. Extra options are applied after
// the defaults and may override them.
func NewVerifier(s *Session, opts ...authz.Option) (*authz.Verifier, error) {
	if s == nil {
		return nil, errors.New("session required")
	}
	all := append([]authz.Option{authz.WithMetrics(s.metrics)}, opts...)
	return authz.NewVerifier(s.api, s, all...)
}
