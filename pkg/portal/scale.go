package portal

// ScaleContext holds the two reference portals of a size-changing pair and
// hands out the shrink and growth factors. It is passed to the portals that
// need it instead of being looked up globally.
type ScaleContext struct {
	A, B *Portal
}

// NewScaleContext creates a context for the pair a (normal size) and b.
func NewScaleContext(a, b *Portal) *ScaleContext {
	return &ScaleContext{A: a, B: b}
}

// ShrinkFactor is the scale multiplier for travelling from A to B.
// It is 1 when either portal is missing.
func (s *ScaleContext) ShrinkFactor() float64 {
	if s == nil || s.A == nil || s.B == nil {
		return 1
	}
	return ratio(s.B.Pose.UniformScale(), s.A.Pose.UniformScale())
}

// GrowthFactor is the scale multiplier for travelling from B to A.
func (s *ScaleContext) GrowthFactor() float64 {
	if s == nil || s.A == nil || s.B == nil {
		return 1
	}
	return ratio(s.A.Pose.UniformScale(), s.B.Pose.UniformScale())
}

// Factor returns the multiplier for travelling from one portal to another.
// Pairs outside the context use the ratio of the two portal scales.
func (s *ScaleContext) Factor(from, to *Portal) float64 {
	if s != nil && s.A != nil && s.B != nil {
		switch {
		case from == s.A && to == s.B:
			return s.ShrinkFactor()
		case from == s.B && to == s.A:
			return s.GrowthFactor()
		}
	}
	return ratio(to.Pose.UniformScale(), from.Pose.UniformScale())
}

// IsShrunk reports whether a traveller of the given uniform scale is
// smaller than normal size.
func (s *ScaleContext) IsShrunk(scale float64) bool {
	return scale < 1
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}
