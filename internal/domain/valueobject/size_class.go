package valueobject

import (
	"fmt"
	"math"
)

const OriginalSuffix = "original"

// SizeClass is a bounding box, in pixels, the longer edge of a derivative fits into.
type SizeClass struct {
	Bound  int
	Suffix string
}

func NewSizeClass(bound int) SizeClass {
	return SizeClass{Bound: bound, Suffix: fmt.Sprintf("%dw", bound)}
}

// DefaultSizePolicy is ordered from the largest bound to the smallest.
var DefaultSizePolicy = []SizeClass{
	NewSizeClass(1920),
	NewSizeClass(1280),
	NewSizeClass(640),
	NewSizeClass(320),
}

type PlannedDerivative struct {
	Class  SizeClass
	Width  int
	Height int
}

type DerivativePlan struct {
	Produce []PlannedDerivative
	Skipped []SizeClass
}

// PlanDerivatives decides which size classes a source of w×h produces and at
// which dimensions. A class is skipped when its bound exceeds the source's
// longer edge, so derivatives are never upscaled.
func PlanDerivatives(width, height int, policy []SizeClass) DerivativePlan {
	var plan DerivativePlan
	long := max(width, height)

	for _, class := range policy {
		if class.Bound <= 0 || long < class.Bound {
			plan.Skipped = append(plan.Skipped, class)
			continue
		}

		w, h := fitLongEdge(width, height, class.Bound)
		plan.Produce = append(plan.Produce, PlannedDerivative{
			Class:  class,
			Width:  w,
			Height: h,
		})
	}

	return plan
}

func fitLongEdge(width, height, bound int) (int, int) {
	if width >= height {
		return bound, scaleEdge(height, bound, width)
	}
	return scaleEdge(width, bound, height), bound
}

func scaleEdge(short, bound, long int) int {
	v := int(math.Round(float64(short) * float64(bound) / float64(long)))
	if v < 1 {
		return 1
	}
	return v
}
