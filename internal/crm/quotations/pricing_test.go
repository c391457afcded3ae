package quotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

func TestSetUnitPriceRecomputesTotal(t *testing.T) {
	lines := []LineItem{{Service: "Thiết kế nhà", Volume: 9}}

	require.NoError(t, SetUnitPrice(lines, 0, "Premium", 500))

	opt := lines[0].Packages[0]
	assert.Equal(t, "Premium", opt.PackageName)
	assert.Equal(t, 4500.0, opt.TotalPrice)
	assert.True(t, opt.IsSelected)
}

func TestSetUnitPriceZeroDeselects(t *testing.T) {
	lines := []LineItem{{Volume: 3, Packages: []PackageOption{
		{PackageName: "Basic", UnitPrice: 100, TotalPrice: 300, IsSelected: true},
	}}}

	require.NoError(t, SetUnitPrice(lines, 0, "Basic", 0))

	assert.Equal(t, 0.0, lines[0].Packages[0].TotalPrice)
	assert.False(t, lines[0].Packages[0].IsSelected)
}

func TestSetUnitPriceMatchesCaseInsensitively(t *testing.T) {
	lines := []LineItem{{Volume: 2, Packages: []PackageOption{
		{PackageName: "Premium", UnitPrice: 100, TotalPrice: 200, IsSelected: true},
	}}}

	require.NoError(t, SetUnitPrice(lines, 0, "PREMIUM", 150))

	// No second entry appears; the existing one is updated.
	require.Len(t, lines[0].Packages, 1)
	assert.Equal(t, 300.0, lines[0].Packages[0].TotalPrice)
}

func TestSetVolumeRecomputesEveryPackage(t *testing.T) {
	lines := []LineItem{{Volume: 9, Packages: []PackageOption{
		{PackageName: "Basic", UnitPrice: 100},
		{PackageName: "Premium", UnitPrice: 500},
	}}}
	Recalculate(lines)

	require.NoError(t, SetVolume(lines, 0, 4))

	assert.Equal(t, 400.0, lines[0].Packages[0].TotalPrice)
	assert.Equal(t, 2000.0, lines[0].Packages[1].TotalPrice)
	assert.True(t, lines[0].VolumePinned)
}

func TestSetOperationsRejectBadIndex(t *testing.T) {
	lines := []LineItem{{Volume: 1}}
	assert.ErrorIs(t, SetUnitPrice(lines, 5, "Basic", 10), shared.ErrValidation)
	assert.ErrorIs(t, SetVolume(lines, -1, 10), shared.ErrValidation)
}

func TestTotalAmountSumsSelectedOnly(t *testing.T) {
	lines := []LineItem{
		{Volume: 2, Packages: []PackageOption{
			{PackageName: "A", UnitPrice: 100},
			{PackageName: "B", UnitPrice: 0},
		}},
		{Volume: 3, Packages: []PackageOption{
			{PackageName: "A", UnitPrice: 50},
		}},
	}
	Recalculate(lines)

	assert.Equal(t, 350.0, TotalAmount(lines))
}

func TestGrandTotalAddsFlatTax(t *testing.T) {
	// 9 m³ at 500,000 per unit, flat tax of 450,000.
	lines := []LineItem{{Service: "Thiết kế nhà", Volume: 9, Packages: []PackageOption{
		{PackageName: "Gói cơ bản", UnitPrice: 500_000},
	}}}
	Recalculate(lines)

	total := TotalAmount(lines)
	assert.Equal(t, 4_500_000.0, total)
	assert.Equal(t, 4_950_000.0, GrandTotal(total, 450_000))
}

func TestAggregateByPackageNameAcrossLines(t *testing.T) {
	lines := []LineItem{
		{Volume: 2, Packages: []PackageOption{{PackageName: "A", UnitPrice: 100}}},
		{Volume: 3, Packages: []PackageOption{{PackageName: "a", UnitPrice: 50}}},
		{Volume: 1, Packages: []PackageOption{{PackageName: "B", UnitPrice: 70}}},
	}
	Recalculate(lines)

	aggs := AggregateByPackageName(lines)
	require.Len(t, aggs, 2)
	// Case-insensitive grouping, first-seen casing kept.
	assert.Equal(t, "A", aggs[0].PackageName)
	assert.Equal(t, 350.0, aggs[0].TotalPrice)
	assert.Equal(t, "B", aggs[1].PackageName)
	assert.Equal(t, 70.0, aggs[1].TotalPrice)
}

func TestApplySurveyVolumeSkipsPinnedLines(t *testing.T) {
	lines := []LineItem{
		{Volume: 9, Packages: []PackageOption{{PackageName: "A", UnitPrice: 10}}},
		{Volume: 5, VolumePinned: true, Packages: []PackageOption{{PackageName: "A", UnitPrice: 10}}},
	}
	Recalculate(lines)

	ApplySurveyVolume(lines, 20)

	assert.Equal(t, 20.0, lines[0].Volume)
	assert.Equal(t, 200.0, lines[0].Packages[0].TotalPrice)
	assert.Equal(t, 5.0, lines[1].Volume)
	assert.Equal(t, 50.0, lines[1].Packages[0].TotalPrice)
}

func TestMergePackagesSkipsDuplicates(t *testing.T) {
	lines := []LineItem{{Volume: 2, Packages: []PackageOption{
		{PackageName: "Basic", UnitPrice: 100, TotalPrice: 200, IsSelected: true},
	}}}

	require.NoError(t, MergePackages(lines, 0, []PackageOption{
		{PackageName: "BASIC", UnitPrice: 999},
		{PackageName: "Premium", UnitPrice: 500},
	}))

	require.Len(t, lines[0].Packages, 2)
	assert.Equal(t, 100.0, lines[0].Packages[0].UnitPrice)
	assert.Equal(t, "Premium", lines[0].Packages[1].PackageName)
	assert.Equal(t, 1000.0, lines[0].Packages[1].TotalPrice)
}
