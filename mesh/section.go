package mesh

import "fmt"

// Section lays out degrees of freedom over a chart of mesh points: each
// point in [Start, End) carries a non-negative dof count, and SetUp
// computes the running offsets used to address a point's block inside a
// local vector.
type Section struct {
	start, end int
	dof        []int
	offsets    []int
	size       int
	setUp      bool
}

// NewSection creates a section over the half-open point range
// [start, end) with every dof count initialized to zero.
func NewSection(start, end int) *Section {
	if end < start {
		end = start
	}
	return &Section{
		start: start,
		end:   end,
		dof:   make([]int, end-start),
	}
}

// Chart returns the section's point range.
func (s *Section) Chart() (int, int) { return s.start, s.end }

// SetDof assigns n degrees of freedom to point p. Assigning a point
// twice overwrites the previous count.
func (s *Section) SetDof(p, n int) error {
	if p < s.start || p >= s.end {
		return fmt.Errorf("point %d outside section chart [%d, %d)", p, s.start, s.end)
	}
	if n < 0 {
		return fmt.Errorf("negative dof count %d for point %d", n, p)
	}
	s.dof[p-s.start] = n
	s.setUp = false
	return nil
}

// Dof returns the dof count of point p, zero for points outside the
// chart.
func (s *Section) Dof(p int) int {
	if p < s.start || p >= s.end {
		return 0
	}
	return s.dof[p-s.start]
}

// SetUp finalizes the layout, computing offsets and the total size.
func (s *Section) SetUp() {
	s.offsets = make([]int, len(s.dof))
	off := 0
	for i, n := range s.dof {
		s.offsets[i] = off
		off += n
	}
	s.size = off
	s.setUp = true
}

// Offset returns the storage offset and dof count of point p. ok is
// false when p lies outside the chart or carries no dofs, letting
// callers skip such points without error.
func (s *Section) Offset(p int) (off, dof int, ok bool) {
	if !s.setUp || p < s.start || p >= s.end {
		return 0, 0, false
	}
	dof = s.dof[p-s.start]
	if dof == 0 {
		return 0, 0, false
	}
	return s.offsets[p-s.start], dof, true
}

// Size returns the total dof count over the chart. Valid after SetUp.
func (s *Section) Size() int { return s.size }
