package sim

// Generate is the emergency's own lifecycle process (§4.5): wait until
// this call's timestamp (seconds since the simulation origin), mark it
// scheduled, and hand it to the dispatcher.
func (e *Emergency) Generate(d *Dispatcher) {
	d.Kernel.At(e.Timestamp).Subscribe(func() {
		e.OccurringTime = d.Kernel.Now()
		e.State = EmergencyScheduled
		d.NewEmergency(e)
	})
}
