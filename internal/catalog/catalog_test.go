package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/preorder/internal/domain"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	vendors := c.Vendors()
	require.Len(t, vendors, 3)
	assert.Equal(t, "Campus Grill", vendors[0].Name)
	assert.Equal(t, "Noodle House", vendors[1].Name)
	assert.True(t, vendors[2].FullyBooked)

	burger, err := c.MenuItem("1", "1-1")
	require.NoError(t, err)
	assert.Equal(t, "Classic Burger", burger.Name)
	assert.Equal(t, "8.99", burger.Price.StringFixed(2))
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	t.Run("unknown vendor", func(t *testing.T) {
		_, err := c.Vendor("missing")
		assert.True(t, errors.Is(err, domain.ErrVendorNotFound))
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := c.MenuItem("1", "2-1")
		assert.True(t, errors.Is(err, domain.ErrMenuItemNotFound))
	})

	t.Run("vendors copy is detached", func(t *testing.T) {
		vendors := c.Vendors()
		vendors[0].Name = "changed"
		v, err := c.Vendor("1")
		require.NoError(t, err)
		assert.Equal(t, "Campus Grill", v.Name)
	})
}

func TestParse_RejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing vendor id",
			yaml: "vendors:\n  - name: x\n",
		},
		{
			name: "duplicate vendor",
			yaml: "vendors:\n  - id: a\n  - id: a\n",
		},
		{
			name: "duplicate item",
			yaml: "vendors:\n  - id: a\n    menu_items:\n      - id: i\n        price: \"1\"\n      - id: i\n        price: \"1\"\n",
		},
		{
			name: "negative price",
			yaml: "vendors:\n  - id: a\n    menu_items:\n      - id: i\n        price: \"-1.00\"\n",
		},
		{
			name: "not yaml",
			yaml: "vendors: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
