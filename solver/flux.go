package solver

import (
	"fmt"

	"github.com/notargets/fvmonitor/field"
)

// DiffusiveFlux is a boundary solver computing per-face flux-like
// quantities as coefficient-weighted cell state: for component c on
// face f, q_c = coeff_c * u(cell(f)). It serves as the demo collaborator
// for the boundary monitor; the closed form makes its output easy to
// verify independently.
type DiffusiveFlux struct {
	id         string
	sub        *Subdomain
	geometry   []FaceGeometry
	components []string
	coeffs     []float64
}

// NewDiffusiveFlux creates the solver. coeffs must parallel components.
func NewDiffusiveFlux(id string, sub *Subdomain, geometry []FaceGeometry, components []string, coeffs []float64) (*DiffusiveFlux, error) {
	if len(components) != len(coeffs) {
		return nil, fmt.Errorf("%d components but %d coefficients", len(components), len(coeffs))
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("at least one output component is required")
	}
	return &DiffusiveFlux{
		id:         id,
		sub:        sub,
		geometry:   geometry,
		components: components,
		coeffs:     coeffs,
	}, nil
}

func (s *DiffusiveFlux) ID() string { return s.id }

func (s *DiffusiveFlux) Subdomain() *Subdomain { return s.sub }

func (s *DiffusiveFlux) CellRange() Range {
	cStart, cEnd := s.sub.Mesh.HeightStratum(0)
	return Range{Start: cStart, End: cEnd}
}

func (s *DiffusiveFlux) BoundaryGeometry() []FaceGeometry { return s.geometry }

func (s *DiffusiveFlux) OutputComponents() []string { return s.components }

func (s *DiffusiveFlux) OutputFunctions() []OutputFunction {
	fns := make([]OutputFunction, len(s.components))
	for i, name := range s.components {
		coeff := s.coeffs[i]
		fns[i] = OutputFunction{
			Name: name,
			Evaluate: func(time float64, geom FaceGeometry, state []float64) (float64, error) {
				if len(state) == 0 {
					return 0, fmt.Errorf("face %d: empty cell state", geom.FaceID)
				}
				return coeff * state[0], nil
			},
		}
	}
	return fns
}

// ComputeRHS evaluates every output function on every boundary face,
// writing each face's component block into locOut at the face's layout
// offset. Faces with no location in the output layout are skipped.
func (s *DiffusiveFlux) ComputeRHS(time float64, locX, locOut *field.Vec, fns []OutputFunction) error {
	for _, geom := range s.geometry {
		coff, cdof, ok := locX.Offsets(geom.CellID)
		if !ok {
			continue
		}
		state := locX.Data[coff : coff+cdof]

		woff, wdof, ok := locOut.Offsets(geom.FaceID)
		if !ok {
			continue
		}
		for i, fn := range fns {
			if i >= wdof {
				break
			}
			val, err := fn.Evaluate(time, geom, state)
			if err != nil {
				return fmt.Errorf("output %q on face %d: %w", fn.Name, geom.FaceID, err)
			}
			locOut.Data[woff+i] = val
		}
	}
	return nil
}
