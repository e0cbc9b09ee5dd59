package cascade

// Router maps a Complexity verdict to an execution Tier, falling back to
// a conservative default tier whenever the analyser's confidence is too
// low to trust its level classification.
type Router struct {
	DefaultTier        Tier
	ConfidenceThreshold float64
}

// NewRouter returns a Router with the default Medium fallback tier and a
// 0.7 confidence threshold.
func NewRouter() *Router {
	return &Router{DefaultTier: TierMedium, ConfidenceThreshold: 0.7}
}

// Route picks a Tier for the given Complexity verdict.
func (r *Router) Route(c Complexity) Tier {
	if c.Confidence < r.ConfidenceThreshold {
		return r.DefaultTier
	}
	switch c.Level {
	case LevelSimple:
		return TierLight
	case LevelModerate:
		return TierMedium
	default:
		return TierHeavy
	}
}
