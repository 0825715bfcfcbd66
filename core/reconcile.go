package core

// DefaultSimulated returns the released level for a pin's polarity:
// high for pull-up (active low), low otherwise.
func DefaultSimulated(pull Pull) bool {
	return pull == PullUp
}

// Reconcile merges a physical sample with the digital-twin override.
//
// Pull-up pins are active low, so either side pulling low wins.
// Pull-down and floating pins are active high, so either side driving
// high wins. active reports whether the physical sample alone is in the
// asserted state.
func Reconcile(physical, simulated bool, pull Pull) (logical, active bool) {
	if pull == PullUp {
		return physical && simulated, !physical
	}
	return physical || simulated, physical
}

// ActiveLevel is the level reported to the observer for an asserted pin.
func ActiveLevel(pull Pull) bool {
	return pull != PullUp
}
