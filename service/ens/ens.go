package ens

import (
	"strings"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
)

type ENS interface {
	// Resolve returns domain.ErrNotFound for names without an address
	Resolve(ctx ctx.Ctx, name string) (domain.Address, error)
}

// IsName reports whether s looks like an ens name rather than an address
func IsName(s string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(s)), ".eth")
}
