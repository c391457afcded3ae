package quotations

import (
	"fmt"
	"strings"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// Pricing operates on the quotation's line items. Package names compare
// case-insensitively everywhere; the first-seen casing is kept for display.

// SetUnitPrice locates or creates the named package option on the line item,
// sets its unit price and recomputes totalPrice = price × volume. An option is
// selected exactly when its price is positive.
func SetUnitPrice(lines []LineItem, lineIdx int, packageName string, price float64) error {
	if lineIdx < 0 || lineIdx >= len(lines) {
		return fmt.Errorf("%w: line index %d out of range", shared.ErrValidation, lineIdx)
	}
	if price < 0 {
		return fmt.Errorf("%w: unit price must not be negative", shared.ErrValidation)
	}

	line := &lines[lineIdx]
	opt := findPackage(line, packageName)
	if opt == nil {
		line.Packages = append(line.Packages, PackageOption{PackageName: packageName})
		opt = &line.Packages[len(line.Packages)-1]
	}
	opt.UnitPrice = price
	opt.TotalPrice = price * line.Volume
	opt.IsSelected = price > 0
	return nil
}

// SetVolume overrides the line's volume, pins it against survey recomputes and
// recomputes every package option's total with its unchanged unit price.
func SetVolume(lines []LineItem, lineIdx int, volume float64) error {
	if lineIdx < 0 || lineIdx >= len(lines) {
		return fmt.Errorf("%w: line index %d out of range", shared.ErrValidation, lineIdx)
	}
	if volume < 0 {
		return fmt.Errorf("%w: volume must not be negative", shared.ErrValidation)
	}

	line := &lines[lineIdx]
	line.Volume = volume
	line.VolumePinned = true
	recomputeLine(line)
	return nil
}

// ApplySurveyVolume distributes a survey-derived volume to every line whose
// volume has not been manually pinned.
func ApplySurveyVolume(lines []LineItem, volume float64) {
	for i := range lines {
		if lines[i].VolumePinned {
			continue
		}
		lines[i].Volume = volume
		recomputeLine(&lines[i])
	}
}

// Recalculate recomputes every package total from its unit price and line
// volume. Totals arriving from the client are never trusted.
func Recalculate(lines []LineItem) {
	for i := range lines {
		recomputeLine(&lines[i])
	}
}

// TotalAmount sums totalPrice over all selected options across all lines.
func TotalAmount(lines []LineItem) float64 {
	var total float64
	for i := range lines {
		for _, opt := range lines[i].Packages {
			if opt.IsSelected {
				total += opt.TotalPrice
			}
		}
	}
	return total
}

// GrandTotal adds the flat tax amount to the total. Tax is an absolute value
// entered by the user, not a percentage.
func GrandTotal(totalAmount, taxAmount float64) float64 {
	return totalAmount + taxAmount
}

// PackageAggregate is one row of the side-by-side package comparison.
type PackageAggregate struct {
	PackageName string  `json:"packageName"`
	TotalPrice  float64 `json:"totalPrice"`
}

// AggregateByPackageName groups every line's options by package name
// (case-insensitive) and sums totalPrice per group. Order follows first
// appearance; the first-seen casing names the group.
func AggregateByPackageName(lines []LineItem) []PackageAggregate {
	index := make(map[string]int)
	var out []PackageAggregate
	for i := range lines {
		for _, opt := range lines[i].Packages {
			key := strings.ToLower(opt.PackageName)
			pos, ok := index[key]
			if !ok {
				pos = len(out)
				index[key] = pos
				out = append(out, PackageAggregate{PackageName: opt.PackageName})
			}
			out[pos].TotalPrice += opt.TotalPrice
		}
	}
	return out
}

// MergePackages merges new options into the line, skipping names already
// present. Duplicate package selections are never rejected outright; merging
// without duplication is the single policy for both creation flows.
func MergePackages(lines []LineItem, lineIdx int, opts []PackageOption) error {
	if lineIdx < 0 || lineIdx >= len(lines) {
		return fmt.Errorf("%w: line index %d out of range", shared.ErrValidation, lineIdx)
	}

	line := &lines[lineIdx]
	for _, opt := range opts {
		if findPackage(line, opt.PackageName) != nil {
			continue
		}
		opt.TotalPrice = opt.UnitPrice * line.Volume
		opt.IsSelected = opt.UnitPrice > 0
		line.Packages = append(line.Packages, opt)
	}
	return nil
}

func findPackage(line *LineItem, name string) *PackageOption {
	for i := range line.Packages {
		if strings.EqualFold(line.Packages[i].PackageName, name) {
			return &line.Packages[i]
		}
	}
	return nil
}

func recomputeLine(line *LineItem) {
	for i := range line.Packages {
		line.Packages[i].TotalPrice = line.Packages[i].UnitPrice * line.Volume
		line.Packages[i].IsSelected = line.Packages[i].UnitPrice > 0
	}
}
