package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateValueUsesConditionSnapshot(t *testing.T) {
	items := []CollectionItem{
		{Condition: ConditionLoose, PurchasePrice: 20, CurrentPriceLoose: Float(25), CurrentPriceCIB: Float(40)},
		{Condition: ConditionCIB, PurchasePrice: 30, CurrentPriceLoose: Float(10), CurrentPriceCIB: Float(35)},
		{Condition: ConditionNew, PurchasePrice: 50}, // no snapshot counts as 0
	}

	v := AggregateValue(items)

	assert.InDelta(t, 100, v.TotalPurchase, 1e-9)
	assert.InDelta(t, 60, v.TotalCurrent, 1e-9)
	assert.InDelta(t, -40, v.Difference, 1e-9)
}

func TestAggregateValueIsOrderIndependent(t *testing.T) {
	a := CollectionItem{Condition: ConditionLoose, PurchasePrice: 12.5, CurrentPriceLoose: Float(14.25)}
	b := CollectionItem{Condition: ConditionNew, PurchasePrice: 60, CurrentPriceNew: Float(55.1)}
	c := CollectionItem{Condition: ConditionCIB, PurchasePrice: 33.3}

	v1 := AggregateValue([]CollectionItem{a, b, c})
	v2 := AggregateValue([]CollectionItem{c, a, b})

	assert.InDelta(t, v1.TotalPurchase, v2.TotalPurchase, 1e-9)
	assert.InDelta(t, v1.TotalCurrent, v2.TotalCurrent, 1e-9)
	assert.InDelta(t, v1.Difference, v2.Difference, 1e-9)
}

func TestAggregateValueEmpty(t *testing.T) {
	assert.Equal(t, CollectionValue{}, AggregateValue(nil))
}

func TestPatchApplyAndColumns(t *testing.T) {
	item := CollectionItem{Name: "Old", Condition: ConditionLoose, PurchasePrice: 10}
	name := "New"
	cond := ConditionCIB
	patch := CollectionItemPatch{Name: &name, Condition: &cond}

	patch.Apply(&item)

	assert.Equal(t, "New", item.Name)
	assert.Equal(t, ConditionCIB, item.Condition)
	assert.Equal(t, 10.0, item.PurchasePrice)
	assert.Equal(t, map[string]interface{}{"name": "New", "condition": ConditionCIB}, patch.Columns())
	assert.False(t, patch.Empty())
	assert.True(t, CollectionItemPatch{}.Empty())
}

func TestPriceDrop(t *testing.T) {
	item := WishlistItem{PriceLoose: Float(40), AlertPercentage: Float(20)}

	alert, ok := item.PriceDrop(Product{PriceLoose: Float(30)})
	assert.True(t, ok)
	assert.InDelta(t, 25, alert.DropPercent, 1e-9)

	_, ok = item.PriceDrop(Product{PriceLoose: Float(35)})
	assert.False(t, ok, "12.5% drop is below the 20% threshold")

	_, ok = WishlistItem{PriceLoose: Float(40)}.PriceDrop(Product{PriceLoose: Float(1)})
	assert.False(t, ok, "no threshold, no alert")
}
