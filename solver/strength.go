package solver

import "fmt"

// Strength is the priority of a constraint. Non-required constraints may be
// violated; the solver minimises the weighted sum of their errors.
type Strength float64

// NewStrength combines the three symbolic levels into one weight. Each
// component is clamped to [0, 1000] after scaling by w, so a single strong
// constraint always outweighs any number of medium ones in practice.
func NewStrength(strong, medium, weak, w float64) Strength {
	var s float64
	s += clamp(strong*w, 0, 1000) * 1000000
	s += clamp(medium*w, 0, 1000) * 1000
	s += clamp(weak*w, 0, 1000)
	return Strength(s)
}

var (
	Required = NewStrength(1000, 1000, 1000, 1)
	Strong   = NewStrength(1, 0, 0, 1)
	Medium   = NewStrength(0, 1, 0, 1)
	Weak     = NewStrength(0, 0, 1, 1)
)

// Clip limits s to the range [0, Required].
func (s Strength) Clip() Strength {
	return Strength(clamp(float64(s), 0, float64(Required)))
}

// IsRequired reports whether s is the required level.
func (s Strength) IsRequired() bool {
	return s.Clip() >= Required
}

func (s Strength) String() string {
	switch s {
	case Required:
		return "required"
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	case Weak:
		return "weak"
	}
	return fmt.Sprintf("strength(%g)", float64(s))
}

// ParseStrength maps a level name to its strength.
func ParseStrength(name string) (Strength, error) {
	switch name {
	case "required":
		return Required, nil
	case "strong":
		return Strong, nil
	case "medium":
		return Medium, nil
	case "weak":
		return Weak, nil
	}
	return 0, fmt.Errorf("unknown strength %q", name)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
