package mesh

// Box is a structured 2D quadrilateral mesh used by tests and the demo
// command. Points follow the plex numbering: cells first, then faces
// (vertical columns before horizontal rows), then vertices.
type Box struct {
	*Mesh
	Nx, Ny int
}

// NewBox builds an Nx by Ny quad grid spanning [0,width] x [0,height].
func NewBox(nx, ny int, width, height float64) *Box {
	nc := nx * ny
	nfv := (nx + 1) * ny // vertical faces
	nfh := nx * (ny + 1) // horizontal faces
	nv := (nx + 1) * (ny + 1)

	b := &Box{
		Mesh: New(2, []int{nc, nfv + nfh, nv}),
		Nx:   nx,
		Ny:   ny,
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			cone := []int{
				b.VerticalFace(i, j),
				b.VerticalFace(i+1, j),
				b.HorizontalFace(i, j),
				b.HorizontalFace(i, j+1),
			}
			b.SetCone(b.Cell(i, j), cone)
		}
	}
	for i := 0; i <= nx; i++ {
		for j := 0; j < ny; j++ {
			b.SetCone(b.VerticalFace(i, j), []int{b.Vertex(i, j), b.Vertex(i, j+1)})
		}
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i < nx; i++ {
			b.SetCone(b.HorizontalFace(i, j), []int{b.Vertex(i, j), b.Vertex(i+1, j)})
		}
	}

	dx := width / float64(nx)
	dy := height / float64(ny)
	coords := make([]float64, nv*2)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			v := j*(nx+1) + i
			coords[2*v] = float64(i) * dx
			coords[2*v+1] = float64(j) * dy
		}
	}
	b.SetCoordinates(coords)

	return b
}

// Cell returns the point index of cell (i, j).
func (b *Box) Cell(i, j int) int { return j*b.Nx + i }

// VerticalFace returns the face at x-column i (0..Nx), row j.
func (b *Box) VerticalFace(i, j int) int {
	return b.Nx*b.Ny + i*b.Ny + j
}

// HorizontalFace returns the face at y-row j (0..Ny), column i.
func (b *Box) HorizontalFace(i, j int) int {
	return b.Nx*b.Ny + (b.Nx+1)*b.Ny + j*b.Nx + i
}

// Vertex returns the vertex at grid position (i, j).
func (b *Box) Vertex(i, j int) int {
	return b.Nx*b.Ny + (b.Nx+1)*b.Ny + b.Nx*(b.Ny+1) + j*(b.Nx+1) + i
}

// BoundaryFaces returns the faces on the outer boundary of the box in
// ascending point order.
func (b *Box) BoundaryFaces() []int {
	var faces []int
	for j := 0; j < b.Ny; j++ {
		faces = append(faces, b.VerticalFace(0, j), b.VerticalFace(b.Nx, j))
	}
	for i := 0; i < b.Nx; i++ {
		faces = append(faces, b.HorizontalFace(i, 0), b.HorizontalFace(i, b.Ny))
	}
	sortInts(faces)
	return faces
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// NewSplitBox builds the rank-local half of a 2x1 quad grid distributed
// over two ranks. Each rank holds one unit cell; the interface between
// them is duplicated on both ranks, owned by rank 0 and ghosted on rank
// 1 along with its two vertices. Used by the distributed tests to
// exercise ghost exchange and additive reduction over a shared face.
func NewSplitBox(rank int) *Box {
	b := NewBox(1, 1, 1, 1)
	b.Mesh.Rank = rank
	if rank == 1 {
		// Shift into [1,2] x [0,1].
		for v := 0; v < 4; v++ {
			b.coords[2*v] += 1
		}
		// Rank 1's left face is rank 0's right face.
		b.SetGhost(b.VerticalFace(0, 0), 0, b.VerticalFace(1, 0))
		b.SetGhost(b.Vertex(0, 0), 0, b.Vertex(1, 0))
		b.SetGhost(b.Vertex(0, 1), 0, b.Vertex(1, 1))
	}
	return b
}
