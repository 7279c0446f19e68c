package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolver_Split(t *testing.T) {
	s := NewSolver(120, 20)

	tests := []struct {
		avail int
		want  int
		ok    bool
	}{
		{avail: 65, want: 32, ok: true},
		{avail: 40, want: 20, ok: true},
		{avail: 39, ok: false},
		{avail: 0, ok: false},
		{avail: -5, ok: false},
		{avail: 285, want: 60, ok: true},
	}

	for _, tt := range tests {
		got, ok := s.Split(tt.avail)
		assert.Equal(t, tt.ok, ok, "avail %d", tt.avail)
		assert.Equal(t, tt.want, got, "avail %d", tt.avail)
	}
}

func TestSolver_InfeasibleCapFallsBack(t *testing.T) {
	s := NewSolver(30, 20)

	_, ok := s.Split(100)
	assert.False(t, ok)
}

func TestSolver_Caches(t *testing.T) {
	s := NewSolver(120, 20)

	first, _ := s.Split(80)
	assert.Len(t, s.cache, 1)
	second, _ := s.Split(80)
	assert.Equal(t, first, second)
	assert.Len(t, s.cache, 1)
}

func TestEngine_ColumnsNeverBelowFloor(t *testing.T) {
	e := NewEngine(contextFixture(t), DefaultOptions())

	for width := 0; width <= 320; width++ {
		cols := e.Columns(width)
		assert.Equal(t, 2, cols.Gutter)

		if cols.Unified {
			assert.GreaterOrEqual(t, cols.Left, 0, "width %d", width)
			continue
		}

		assert.GreaterOrEqual(t, cols.Left, 20, "width %d", width)
		assert.Equal(t, cols.Left, cols.Right, "width %d", width)
		assert.LessOrEqual(t, cols.Left+cols.Right, 120, "width %d", width)
		assert.LessOrEqual(t, linePrefix+cols.Gutter+signWidth+cols.Left+sepWidth+cols.Right, width, "width %d", width)
	}

	// 13 cells of chrome plus a 3 cell separator leave 40 at width 56
	assert.True(t, e.Columns(55).Unified)
	assert.False(t, e.Columns(56).Unified)
}
