package app

import (
	"fmt"

	"github.com/google/uuid"
)

// ReferenceGenerator produces unique transfer references. It is an interface
// so tests can pin references deterministically.
type ReferenceGenerator interface {
	NewReference() string
}

// UUIDReferenceGenerator namespaces a random UUID under a fixed prefix,
// e.g. "payout_6f1c...".
type UUIDReferenceGenerator struct {
	Prefix string
}

func (g UUIDReferenceGenerator) NewReference() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "payout"
	}
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
