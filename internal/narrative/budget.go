package narrative

// Budget caps how much history a context package may consume, in the
// units of whatever Estimator is in use.
type Budget struct {
	// Limit is the total capacity. The full current scene is exempt: it is
	// always included whole, even when it alone exceeds the limit.
	Limit int
	// RecentScenes bounds how many ended scenes may be included with raw
	// events before older scenes fall back to summaries.
	RecentScenes int
}

// Remaining returns the capacity left after consumed units. It can go
// negative when the exempt current-scene layer overruns the limit.
func (b Budget) Remaining(consumed int) int {
	return b.Limit - consumed
}
