package layout

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Solver splits the content area of a line row into two equal columns.
// The split is the optimum of a small linear program:
//
//	maximize   L + R
//	subject to L + R <= avail
//	           L + R <= maxContent
//	           L  = R
//	           L >= floor, R >= floor
//
// Solutions are cached by avail, so a resize that keeps the width costs
// nothing.
type Solver struct {
	maxContent int
	floor      int
	cache      map[int]split
}

type split struct {
	width int
	ok    bool
}

// NewSolver returns a solver for the given content cap and column floor.
func NewSolver(maxContent, floor int) *Solver {
	return &Solver{
		maxContent: maxContent,
		floor:      floor,
		cache:      make(map[int]split),
	}
}

// Split returns the width of each column, or false when two columns of at
// least floor cells do not fit and the caller should fall back to one.
func (s *Solver) Split(avail int) (int, bool) {
	if got, ok := s.cache[avail]; ok {
		return got.width, got.ok
	}

	width, ok := s.solve(avail)
	s.cache[avail] = split{width: width, ok: ok}
	return width, ok
}

func (s *Solver) solve(avail int) (int, bool) {
	if avail < 2*s.floor || s.maxContent < 2*s.floor {
		return 0, false
	}

	// Variables: L, R, and slacks for the two caps and the two floors.
	c := []float64{-1, -1, 0, 0, 0, 0}
	A := mat.NewDense(5, 6, []float64{
		1, 1, 1, 0, 0, 0,
		1, 1, 0, 1, 0, 0,
		1, -1, 0, 0, 0, 0,
		1, 0, 0, 0, -1, 0,
		0, 1, 0, 0, 0, -1,
	})
	b := []float64{
		float64(avail),
		float64(s.maxContent),
		0,
		float64(s.floor),
		float64(s.floor),
	}

	_, x, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		return 0, false
	}

	left := int(math.Floor(x[0] + 1e-6))
	right := int(math.Floor(x[1] + 1e-6))
	width := min(left, right)
	if width < s.floor {
		return 0, false
	}
	return width, true
}
