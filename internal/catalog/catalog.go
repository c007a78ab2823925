// Package catalog holds the read-only vendor and menu seed data.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/campus-eats/preorder/internal/domain"
)

//go:embed catalog.yaml
var defaultSeed []byte

type Catalog struct {
	vendors []domain.Vendor
	byID    map[string]int
}

type seed struct {
	Vendors []domain.Vendor `yaml:"vendors"`
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultSeed)
}

// Parse decodes a YAML seed. Only the shape is checked: ids present and
// unique, prices non-negative.
func Parse(data []byte) (*Catalog, error) {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		vendors: s.Vendors,
		byID:    make(map[string]int, len(s.Vendors)),
	}

	for i, v := range s.Vendors {
		if v.ID == "" {
			return nil, fmt.Errorf("vendor at index %d: missing id", i)
		}
		if _, dup := c.byID[v.ID]; dup {
			return nil, fmt.Errorf("vendor %s: duplicate id", v.ID)
		}
		c.byID[v.ID] = i

		items := make(map[string]struct{}, len(v.MenuItems))
		for _, item := range v.MenuItems {
			if item.ID == "" {
				return nil, fmt.Errorf("vendor %s: menu item missing id", v.ID)
			}
			if _, dup := items[item.ID]; dup {
				return nil, fmt.Errorf("vendor %s: duplicate menu item %s", v.ID, item.ID)
			}
			if item.Price.IsNegative() {
				return nil, fmt.Errorf("vendor %s: menu item %s has negative price", v.ID, item.ID)
			}
			items[item.ID] = struct{}{}
		}
	}

	return c, nil
}

// Vendors returns the vendors in seed order.
func (c *Catalog) Vendors() []domain.Vendor {
	out := make([]domain.Vendor, len(c.vendors))
	copy(out, c.vendors)
	return out
}

func (c *Catalog) Vendor(id string) (domain.Vendor, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return c.vendors[i], nil
}

func (c *Catalog) MenuItem(vendorID, itemID string) (domain.MenuItem, error) {
	v, err := c.Vendor(vendorID)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item, ok := v.Item(itemID)
	if !ok {
		return domain.MenuItem{}, domain.ErrMenuItemNotFound
	}
	return item, nil
}
