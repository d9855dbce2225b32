package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_LookupIgnoresCase(t *testing.T) {
	menu := DefaultMenu()

	it, ok := menu.Lookup("  veg pizza ")
	require.True(t, ok)
	assert.Equal(t, "Veg Pizza", it.Name)
	assert.Equal(t, 100.0, it.Price)

	_, ok = menu.Lookup("pineapple pizza")
	assert.False(t, ok)
}

func TestMenu_ItemsIsACopy(t *testing.T) {
	menu := DefaultMenu()

	items := menu.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Tandoori Paneer", items[0].Name)

	items[0].Price = 1
	it, _ := menu.Lookup("Tandoori Paneer")
	assert.Equal(t, 200.0, it.Price)

	byName := menu.ByName()
	assert.Contains(t, byName, "Veggie Delight")
}

func TestCart_Recalculate(t *testing.T) {
	menu := DefaultMenu()
	cart := NewCart()
	cart.Items["Veg Pizza"] = 2
	cart.Items["Tandoori Paneer"] = 1

	cart.Recalculate(menu)

	assert.Equal(t, 400.0, cart.TotalPrice)
	assert.False(t, cart.Empty())
}

func TestToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := NewToken("abc", now.Add(time.Hour))

	assert.False(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(time.Hour)))
	assert.True(t, tok.Expired(now.Add(time.Hour+time.Millisecond)))
	assert.True(t, tok.ExpiresAt().Equal(now.Add(time.Hour)))
}
