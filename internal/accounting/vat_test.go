package accounting_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisbench/internal/accounting"
	"fisbench/internal/logger"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func newReconciler() *accounting.Reconciler {
	return accounting.NewReconciler(logger.Nop())
}

func TestReconcile_SumThenDivide(t *testing.T) {
	items := []accounting.LegacyLineItem{
		{Name: "a", TotalPrice: 10.00, VATRate: iptr(10)},
		{Name: "b", TotalPrice: 10.00, VATRate: iptr(10)},
		{Name: "c", TotalPrice: 10.00, VATRate: iptr(10)},
	}

	rec := newReconciler().Reconcile(items)

	require.Len(t, rec.Breakdown, 1)
	row := rec.Breakdown[0]
	assert.Equal(t, 10, row.Rate)
	assert.Equal(t, 2.73, row.VATAmount)
	assert.Equal(t, 27.27, row.BaseAmount)
	assert.Equal(t, 30.00, row.TotalAmount)
	assert.Equal(t, 2.73, rec.TotalVAT)
	assert.Equal(t, 27.27, rec.Subtotal)
	assert.Equal(t, 30.00, rec.GrandTotal)
}

func TestReconcile_SumThenDivideDivergesFromPerItemRounding(t *testing.T) {
	items := make([]accounting.LegacyLineItem, 7)
	perItemRounded := 0.0
	for i := range items {
		items[i] = accounting.LegacyLineItem{TotalPrice: 1.00, VATRate: iptr(20)}
		perItemRounded += math.Round(1.00*20/120*100) / 100
	}

	rec := newReconciler().Reconcile(items)

	assert.InDelta(t, 1.19, perItemRounded, 1e-9)
	assert.Equal(t, 1.17, rec.TotalVAT)
	assert.NotEqual(t, math.Round(perItemRounded*100)/100, rec.TotalVAT)
	assert.Equal(t, 5.83, rec.Subtotal)
	assert.Equal(t, 7.00, rec.GrandTotal)
}

func TestReconcile_DiscountAlreadyApplied(t *testing.T) {
	items := []accounting.LegacyLineItem{{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, TotalPrice: 80, VATRate: iptr(0),
	}}

	rec := newReconciler().Reconcile(items)

	assert.Equal(t, 80.0, rec.GrandTotal)
}

func TestReconcile_DiscountNotYetApplied(t *testing.T) {
	items := []accounting.LegacyLineItem{{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, TotalPrice: 100, VATRate: iptr(0),
	}}

	rec := newReconciler().Reconcile(items)

	assert.Equal(t, 80.0, rec.GrandTotal)
}

func TestReconcile_AmbiguousDiscountKeepsReportedGross(t *testing.T) {
	items := []accounting.LegacyLineItem{{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, TotalPrice: 55, VATRate: iptr(0),
	}}

	rec := newReconciler().Reconcile(items)

	assert.Equal(t, 55.0, rec.GrandTotal)
}

func TestReconcile_MissingQuantityDefaultsToOne(t *testing.T) {
	items := []accounting.LegacyLineItem{
		{UnitPrice: fptr(50), DiscountAmount: 10, TotalPrice: 50, VATRate: iptr(0)},
		{UnitPrice: fptr(50), Quantity: fptr(0), DiscountAmount: 10, TotalPrice: 50, VATRate: iptr(0)},
	}

	rec := newReconciler().Reconcile(items)

	assert.Equal(t, 80.0, rec.GrandTotal)
}

func TestReconcile_NoItems(t *testing.T) {
	rec := newReconciler().Reconcile(nil)

	assert.NotNil(t, rec.Breakdown)
	assert.Empty(t, rec.Breakdown)
	assert.Zero(t, rec.Subtotal)
	assert.Zero(t, rec.TotalVAT)
	assert.Zero(t, rec.GrandTotal)
}

func TestReconcile_ZeroAndMissingRateShareGroup(t *testing.T) {
	items := []accounting.LegacyLineItem{
		{TotalPrice: 12.5, VATRate: iptr(0)},
		{TotalPrice: 7.5},
	}

	rec := newReconciler().Reconcile(items)

	require.Len(t, rec.Breakdown, 1)
	assert.Equal(t, 0, rec.Breakdown[0].Rate)
	assert.Equal(t, 20.0, rec.Breakdown[0].BaseAmount)
	assert.Zero(t, rec.Breakdown[0].VATAmount)
}

func TestReconcile_RatesSortedAscending(t *testing.T) {
	items := []accounting.LegacyLineItem{
		{TotalPrice: 120, VATRate: iptr(20)},
		{TotalPrice: 101, VATRate: iptr(1)},
		{TotalPrice: 110, VATRate: iptr(10)},
	}

	rec := newReconciler().Reconcile(items)

	require.Len(t, rec.Breakdown, 3)
	assert.Equal(t, []int{1, 10, 20}, []int{rec.Breakdown[0].Rate, rec.Breakdown[1].Rate, rec.Breakdown[2].Rate})
	assert.Equal(t, 1.0, rec.Breakdown[0].VATAmount)
	assert.Equal(t, 10.0, rec.Breakdown[1].VATAmount)
	assert.Equal(t, 20.0, rec.Breakdown[2].VATAmount)
	assert.Equal(t, 31.0, rec.TotalVAT)
	assert.Equal(t, 300.0, rec.Subtotal)
	assert.Equal(t, 331.0, rec.GrandTotal)
}

func TestDiscountConsistent(t *testing.T) {
	assert.True(t, accounting.DiscountConsistent(accounting.LineItem{GrossAmount: 10}))
	assert.True(t, accounting.DiscountConsistent(accounting.LineItem{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, GrossAmount: 80,
	}))
	assert.True(t, accounting.DiscountConsistent(accounting.LineItem{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, GrossAmount: 100,
	}))
	assert.False(t, accounting.DiscountConsistent(accounting.LineItem{
		UnitPrice: fptr(100), Quantity: fptr(1), DiscountAmount: 20, GrossAmount: 55,
	}))
}

func TestItemGross(t *testing.T) {
	tests := []struct {
		name string
		item accounting.LineItem
		want string
	}{
		{"no discount", accounting.LineItem{GrossAmount: 10}, "10"},
		{"discount pending", accounting.LineItem{UnitPrice: fptr(50), Quantity: fptr(2), DiscountAmount: 15, GrossAmount: 100}, "85"},
		{"discount applied", accounting.LineItem{UnitPrice: fptr(50), Quantity: fptr(2), DiscountAmount: 15, GrossAmount: 85}, "85"},
		{"ambiguous keeps gross", accounting.LineItem{UnitPrice: fptr(50), Quantity: fptr(2), DiscountAmount: 15, GrossAmount: 70}, "70"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.ItemGross(tt.item).String())
		})
	}
}
