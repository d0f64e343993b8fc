package credits

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is a named entitlement level. Each tier maps to a fixed credit cap in
// the Catalog; tiers differ only by that cap.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierCreator    Tier = "creator"
	TierEnterprise Tier = "enterprise"
	// TierLegacy covers grandfathered subscribers from the pre-tier pricing.
	// It is never sold; it only survives on existing accounts.
	TierLegacy Tier = "legacy"
)

// DefaultGenerationCost is the number of credits one generation spends.
const DefaultGenerationCost int64 = 500

// Catalog maps tiers to their credit caps. Changing a cap never retroactively
// touches existing balances, only future grants.
type Catalog map[Tier]int64

// DefaultCatalog returns the built-in tier catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		TierFree:       10_000,  // 20 images
		TierStarter:    120_000, // 240 images
		TierCreator:    300_000, // 600 images
		TierEnterprise: 800_000, // 1600 images
		TierLegacy:     200_000, // grandfathered Pro
	}
}

// Cap returns the credit cap for a tier, or ErrUnknownTier.
func (c Catalog) Cap(t Tier) (int64, error) {
	cap, ok := c[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	return cap, nil
}

// Validate checks the catalog is usable: the free tier must be present (every
// new account and every cancellation lands on it) and caps must be positive.
func (c Catalog) Validate() error {
	if _, ok := c[TierFree]; !ok {
		return fmt.Errorf("%w: missing %q tier", ErrInvalidCatalog, TierFree)
	}
	for tier, cap := range c {
		if cap <= 0 {
			return fmt.Errorf("%w: tier %q has non-positive cap %d", ErrInvalidCatalog, tier, cap)
		}
	}
	return nil
}

// CatalogSource loads a tier catalog, mirroring how subscription plans are
// sourced elsewhere: from code, a file, or remote configuration.
type CatalogSource interface {
	Load(ctx context.Context) (Catalog, error)
}

type staticCatalogSource struct {
	catalog Catalog
}

// NewStaticCatalogSource returns a CatalogSource backed by an in-memory copy
// of the given catalog. Panics on an invalid catalog to fail fast during
// initialization.
func NewStaticCatalogSource(catalog Catalog) CatalogSource {
	if err := catalog.Validate(); err != nil {
		panic(err)
	}
	cp := make(Catalog, len(catalog))
	for tier, cap := range catalog {
		cp[tier] = cap
	}
	return &staticCatalogSource{catalog: cp}
}

func (s *staticCatalogSource) Load(_ context.Context) (Catalog, error) {
	cp := make(Catalog, len(s.catalog))
	for tier, cap := range s.catalog {
		cp[tier] = cap
	}
	return cp, nil
}

type yamlCatalogSource struct {
	path string
}

// NewYAMLCatalogSource returns a CatalogSource that reads a tier→cap mapping
// from a YAML file on each Load call:
//
//	free: 10000
//	starter: 120000
//	creator: 300000
func NewYAMLCatalogSource(path string) CatalogSource {
	return &yamlCatalogSource{path: path}
}

func (s *yamlCatalogSource) Load(_ context.Context) (Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var raw map[string]int64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	catalog := make(Catalog, len(raw))
	for tier, cap := range raw {
		catalog[Tier(tier)] = cap
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}
