package step

// SetIntervalCounters loads the tuning-interval counters directly so
// tests can pin the adaptation table without simulating thousands of
// accept/reject outcomes.
func (mt *Metropolis) SetIntervalCounters(accepted, rejected int) {
	mt.accepted, mt.rejected = accepted, rejected
}

// SetIntervalCounters loads the tuning-interval counters directly.
func (b *BinaryMetropolis) SetIntervalCounters(accepted, rejected int) {
	b.accepted, b.rejected = accepted, rejected
}
