package billing

import (
	"fmt"

	"github.com/studiosix/photostudio/pkg/credits"
)

// BillingInterval is the charge frequency of a price.
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalAnnual  BillingInterval = "annual"
)

// Price binds a processor price reference to a tier and interval. One tier
// usually carries two prices (monthly and annual); both resolve to the same
// terminal tier when reconciling.
type Price struct {
	Ref      string
	Tier     credits.Tier
	Interval BillingInterval
}

// PriceTable is the configured set of sellable prices.
type PriceTable []Price

// Validate rejects empty tables and duplicate references early.
func (t PriceTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no prices configured", ErrInvalidPriceTable)
	}
	seen := make(map[string]struct{}, len(t))
	for _, p := range t {
		if p.Ref == "" {
			return fmt.Errorf("%w: empty price reference for tier %q", ErrInvalidPriceTable, p.Tier)
		}
		if _, dup := seen[p.Ref]; dup {
			return fmt.Errorf("%w: duplicate price reference %q", ErrInvalidPriceTable, p.Ref)
		}
		seen[p.Ref] = struct{}{}
	}
	return nil
}

// TierFor resolves a price reference to its tier.
func (t PriceTable) TierFor(ref string) (credits.Tier, bool) {
	for _, p := range t {
		if p.Ref == ref {
			return p.Tier, true
		}
	}
	return "", false
}

// RefFor returns the price reference selling the given tier at the given
// interval.
func (t PriceTable) RefFor(tier credits.Tier, interval BillingInterval) (string, bool) {
	for _, p := range t {
		if p.Tier == tier && p.Interval == interval {
			return p.Ref, true
		}
	}
	return "", false
}
