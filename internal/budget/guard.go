// Package budget enforces the daily credit spend ceiling and the per-batch
// cost floor for discovery runs.
package budget

// Guard tracks credit spend for one invocation. The amount already used today
// is read once at invocation start; only the in-run counter moves afterwards.
// Runs are single-threaded, so no synchronization is needed.
type Guard struct {
	dailyMax    int
	usedToday   int
	usedThisRun int
}

// NewGuard creates a Guard for one invocation.
func NewGuard(dailyMax, usedToday int) *Guard {
	return &Guard{dailyMax: dailyMax, usedToday: usedToday}
}

// Exhausted reports whether the daily ceiling was already reached before this
// run spent anything. When true, the invocation must short-circuit without
// any external call.
func (g *Guard) Exhausted() bool {
	return g.usedToday >= g.dailyMax
}

// Remaining returns the credits still available to this run.
func (g *Guard) Remaining() int {
	return g.dailyMax - g.usedToday - g.usedThisRun
}

// Affordable reports whether one more batch of the given cost fits within the
// remaining budget. A false result ends the batch loop (partial success, not
// an error).
func (g *Guard) Affordable(cost int) bool {
	return g.Remaining() >= cost
}

// Consume records credits spent by a completed batch.
func (g *Guard) Consume(cost int) {
	g.usedThisRun += cost
}

// Used returns the credits consumed by this run so far.
func (g *Guard) Used() int {
	return g.usedThisRun
}

// Limit returns the configured daily maximum.
func (g *Guard) Limit() int {
	return g.dailyMax
}

// UsedToday returns the credits logged for the tenant before this run.
func (g *Guard) UsedToday() int {
	return g.usedToday
}
