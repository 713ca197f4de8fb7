// Package cohort defines the study population and the treatment/control
// partition derived from the feedback signal.
package cohort

// Unit is a single member of the study population.
// It is created once at load time and immutable thereafter.
type Unit struct {
	// ID is the opaque unit identifier.
	ID string

	// Vector is the dense covariate vector. All units in a population
	// share the same dimensionality.
	Vector []float32

	// Feedback is the treatment-assignment signal: 0 means control,
	// > 0 means treatment.
	Feedback float64

	// Returned reports whether the unit came back for a second
	// contribution (the study outcome).
	Returned bool
}

// Groups holds the treatment/control partition of a population.
// The two slices share the population's backing units; every unit belongs
// to exactly one group.
type Groups struct {
	Treatment []Unit
	Control   []Unit
}

// Partition splits units into treatment (Feedback > 0) and control
// (Feedback == 0) in a single deterministic pass. Input order is preserved
// within each group.
func Partition(units []Unit) Groups {
	g := Groups{
		Treatment: make([]Unit, 0, len(units)),
		Control:   make([]Unit, 0, len(units)),
	}
	for _, u := range units {
		if u.Feedback > 0 {
			g.Treatment = append(g.Treatment, u)
		} else {
			g.Control = append(g.Control, u)
		}
	}
	return g
}

// IDs returns the identifiers of the given units in order.
func IDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

// Vectors returns the covariate vectors of the given units in order.
// The vectors are shared, not copied.
func Vectors(units []Unit) [][]float32 {
	vecs := make([][]float32, len(units))
	for i, u := range units {
		vecs[i] = u.Vector
	}
	return vecs
}

// Outcomes returns the id -> outcome mapping for the given units.
func Outcomes(units []Unit) map[string]bool {
	out := make(map[string]bool, len(units))
	for _, u := range units {
		out[u.ID] = u.Returned
	}
	return out
}
