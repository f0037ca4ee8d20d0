// Package field manages discretized data over a mesh: named vectors,
// per-point dof layouts, ghost exchange between ranks, and the
// additive reduction that combines duplicated face contributions into a
// single global value.
package field

// Vec is a dense vector over a mesh's dof layout. Local vectors span
// every local point (owned and ghost); global vectors span only owned
// dofs. Block is the number of values per nonzero point, used when
// copying per-face blocks between layouts.
type Vec struct {
	Name  string
	Data  []float64
	Block int

	disc *Discretization
}

// Zero clears every entry.
func (v *Vec) Zero() {
	for i := range v.Data {
		v.Data[i] = 0
	}
}

// Len returns the number of entries.
func (v *Vec) Len() int { return len(v.Data) }

// Offsets returns the local storage offset and dof count for point p in
// the vector's owning layout. ok is false when the point carries no
// data here, which callers treat as a silent skip.
func (v *Vec) Offsets(p int) (off, dof int, ok bool) {
	if v.disc == nil || v.disc.section == nil {
		return 0, 0, false
	}
	return v.disc.section.Offset(p)
}

// GlobalOffsets is the global-vector analog of Offsets: it resolves
// only points owned by this rank.
func (v *Vec) GlobalOffsets(p int) (off, dof int, ok bool) {
	if v.disc == nil {
		return 0, 0, false
	}
	return v.disc.GlobalPointOffset(p)
}
