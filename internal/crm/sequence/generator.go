// Package sequence issues unique, prefix-scoped, monotonically increasing
// human-readable codes (customer ids, opportunity numbers, care ids, package
// and service codes). Each (prefix, scope) pair owns an independent counter.
package sequence

import (
	"context"
	"fmt"
	"time"
)

const (
	PrefixCustomer    = "KH"
	PrefixOpportunity = "OPP"
	PrefixCare        = "CSKH"
	PrefixPackage     = "PKG"
	PrefixService     = "SVC"

	globalScope = "_"
)

// Generator formats entity codes on top of atomic counters.
type Generator struct {
	counters Counters
}

// NewGenerator constructs a Generator.
func NewGenerator(counters Counters) *Generator {
	return &Generator{counters: counters}
}

// Next returns the next code for an arbitrary prefix and scope using the
// default `<prefix>-<scope>-<NNNN>` layout.
func (g *Generator) Next(ctx context.Context, prefix, scope string) (string, error) {
	seq, err := g.counters.Reserve(ctx, prefix, scope, 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, scope, seq), nil
}

// CustomerID returns the next `KH-<SHORTNAME>-<NNNN>` code for the given
// normalized short name.
func (g *Generator) CustomerID(ctx context.Context, shortName string) (string, error) {
	seq, err := g.counters.Reserve(ctx, PrefixCustomer, shortName, 1)
	if err != nil {
		return "", err
	}
	return FormatCustomerID(shortName, seq), nil
}

// OpportunityNo returns the next `OPP-<YYYYMMDD>-<NNNN>` number, sequenced
// within the given calendar day.
func (g *Generator) OpportunityNo(ctx context.Context, day time.Time) (string, error) {
	scope := day.Format("20060102")
	seq, err := g.counters.Reserve(ctx, PrefixOpportunity, scope, 1)
	if err != nil {
		return "", err
	}
	return FormatOpportunityNo(day, seq), nil
}

// CareID returns the next `CSKH<MM><YY><NNN>` id, sequenced within the given
// month. The numeric suffix is a true sequence rather than a random number, so
// ids cannot collide.
func (g *Generator) CareID(ctx context.Context, month time.Time) (string, error) {
	scope := month.Format("0106")
	seq, err := g.counters.Reserve(ctx, PrefixCare, scope, 1)
	if err != nil {
		return "", err
	}
	return FormatCareID(month, seq), nil
}

// PackageCode returns the next globally sequenced `PKG-<NNNN>` code.
func (g *Generator) PackageCode(ctx context.Context) (string, error) {
	seq, err := g.counters.Reserve(ctx, PrefixPackage, globalScope, 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", PrefixPackage, seq), nil
}

// ServiceCode returns the next globally sequenced `SVC-<NNNN>` code.
func (g *Generator) ServiceCode(ctx context.Context) (string, error) {
	seq, err := g.counters.Reserve(ctx, PrefixService, globalScope, 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", PrefixService, seq), nil
}

// FormatCustomerID renders a customer id from its parts.
func FormatCustomerID(shortName string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", PrefixCustomer, shortName, seq)
}

// FormatOpportunityNo renders an opportunity number from its parts.
func FormatOpportunityNo(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", PrefixOpportunity, day.Format("20060102"), seq)
}

// FormatCareID renders a care id from its parts.
func FormatCareID(month time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%03d", PrefixCare, month.Format("0106"), seq)
}
