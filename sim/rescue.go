package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/ems-sim/ems-sim/internal/invariant"
	"github.com/ems-sim/ems-sim/sim/trace"
)

// DischargingTime, CleaningTime and the distance/time thresholds are
// dispatcher-configured (see internal/simconfig); the rescue pipeline reads
// them from the Dispatcher and defines no constants of its own.

// triggerPreempt fires the current preempt latch and installs a fresh one,
// per the "take old latch, install new one, fire the old one" pattern
// shared with RescueFinishedSignal.
func (a *Ambulance) triggerPreempt() {
	old := a.PreemptSignal
	a.PreemptSignal = NewEvent()
	old.Trigger()
}

func (a *Ambulance) finishRescueCycle() {
	old := a.RescueFinishedSignal
	a.RescueFinishedSignal = NewEvent()
	old.Trigger()
}

// preemptableFor implements §4.3's preemption predicate: an ambulance is
// preemptable only while heading to an emergency it has not yet reached
// (and only for a higher-urgency incoming triage), or while returning to
// base with nothing left to protect.
func (a *Ambulance) preemptableFor(enabled bool, incoming *Emergency, now int64) bool {
	if !enabled {
		return false
	}
	switch a.State {
	case StateToBase:
		return true
	case StateToEmergency:
		cur := a.CurrentEmergency
		if cur == nil {
			return false
		}
		higherUrgency := (incoming.Triage == TriageRed || incoming.Triage == TriageYellow) &&
			(cur.Triage == TriageGreen || cur.Triage == TriageWhite)
		stillEnRoute := a.TravelStart+a.TravelTime > now
		return higherUrgency && stillEnRoute
	default:
		return false
	}
}

// assign implements the solo branch of the matching algorithm (§4.4.3):
// preempt a if it is mid-rescue, pull it out of the available set, and
// start the rescue.
func (d *Dispatcher) assign(e *Emergency, a *Ambulance, seg Segment) {
	if a.State != StateWaitingAtBase {
		invariant.Check(a.preemptableFor(d.Preemptable, e, d.Kernel.Now()),
			"ambulance %s preempted for emergency %s while not preemptable", a.ID, e.ID)
		a.triggerPreempt()
	}
	d.removeAvailable(a)
	a.State = StateAssigned
	a.CurrentEmergency = e
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, e, d.Kernel.Now()))
	a.rescueStarted(d, e, seg, nil, Segment{})
}

// assignPair implements the paired branch (§4.4.3, §5): both vehicles are
// preempted/pulled from availability together, and neither can be
// preempted again until the pair's rescue concludes.
func (d *Dispatcher) assignPair(e *Emergency, primary *Ambulance, primarySeg Segment, partner *Ambulance, partnerSeg Segment) {
	if primary.State != StateWaitingAtBase {
		invariant.Check(primary.preemptableFor(d.Preemptable, e, d.Kernel.Now()),
			"ambulance %s preempted for emergency %s while not preemptable", primary.ID, e.ID)
		primary.triggerPreempt()
	}
	if partner.State != StateWaitingAtBase {
		invariant.Check(partner.preemptableFor(d.Preemptable, e, d.Kernel.Now()),
			"ambulance %s preempted for emergency %s while not preemptable", partner.ID, e.ID)
		partner.triggerPreempt()
	}
	d.removeAvailable(primary)
	d.removeAvailable(partner)
	primary.State, partner.State = StateAssigned, StateAssigned
	primary.CurrentEmergency, partner.CurrentEmergency = e, e
	d.Sink.LogAmbulanceEvent(ambulanceEvent(primary, e, d.Kernel.Now()))
	d.Sink.LogAmbulanceEvent(ambulanceEvent(partner, e, d.Kernel.Now()))
	primary.rescueStarted(d, e, primarySeg, partner, partnerSeg)
}

// rescueStarted is pair_rescue_started/rescue_started (§4.3, §5): a
// zero-delay barrier lets same-tick preemption settle before the segment
// and serving start time latch in, then travel begins. When partner is
// non-nil both vehicles travel and must both arrive (AllOf) before either
// enters treatment; each vehicle then runs its own treatment and
// post-treatment pipeline (at the hospital an MV skips discharging and
// cleaning).
func (a *Ambulance) rescueStarted(d *Dispatcher, e *Emergency, seg Segment, partner *Ambulance, partnerSeg Segment) {
	d.Kernel.Timeout(0).Subscribe(func() {
		a.CurrentSegment = &seg
		e.State = EmergencyAssigned
		e.StartServingTime = d.Kernel.Now()

		if partner == nil {
			a.toEmergency(d, e, seg)
			return
		}

		partner.CurrentSegment = &partnerSeg
		primaryTravel := a.travelTo(d, seg)
		partnerTravel := partner.travelTo(d, partnerSeg)
		AllOf(primaryTravel, partnerTravel).Subscribe(func() {
			now := d.Kernel.Now()
			if now < e.ReachingTime {
				e.ReachingTime = now
			}
			a.State, partner.State = StateOnTreatment, StateOnTreatment
			a.treatment(d, e)
			partner.treatment(d, e)
		})
	})
}

// toEmergency races travel against preemption (§4.3): if travel wins the
// ambulance reaches the patient and begins treatment; if preemption wins
// the rescue is abandoned and the emergency is returned to the dispatcher.
func (a *Ambulance) toEmergency(d *Dispatcher, e *Emergency, seg Segment) {
	a.State = StateToEmergency
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, e, d.Kernel.Now()))
	travel := a.travelTo(d, seg)
	AnyOf(travel, a.PreemptSignal).Subscribe(func() {
		if travel.Processed() {
			now := d.Kernel.Now()
			if now < e.ReachingTime {
				e.ReachingTime = now
			}
			a.State = StateOnTreatment
			a.treatment(d, e)
			return
		}
		a.CurrentPosition = a.currentPositionAt(d)
		a.preemptedDiscard(d, e)
	})
}

// preemptedDiscard implements §5: the rescue is abandoned mid-travel, the
// emergency goes back to the dispatcher's waiting queue, and this
// ambulance becomes immediately reassignable (the caller that triggered
// the preemption assigns it to the displacing emergency right after).
func (a *Ambulance) preemptedDiscard(d *Dispatcher, e *Emergency) {
	e.ResetServing()
	a.finishRescueCycle()
	a.State = StatePreempted
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, e, d.Kernel.Now()))
	a.CurrentEmergency = nil
	d.PreemptedEmergency(e)
}

// treatment is the fixed-duration, non-preemptable care window (§4.3).
func (a *Ambulance) treatment(d *Dispatcher, e *Emergency) {
	e.State = EmergencyOnTreatment
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, e, d.Kernel.Now()))
	d.Kernel.Timeout(e.TreatmentDuration).Subscribe(func() {
		if e.NeedsHospital {
			a.toHospital(d, e)
			return
		}
		e.State = EmergencyEnded
		d.Sink.LogRescue(rescueRecord(e, a))
		a.CurrentEmergency = nil
		a.toBase(d)
	})
}

// toHospital selects the nearest compatible hospital and transports the
// patient there (§4.3). Non-MV vehicles discharge and then clean; MV
// vehicles go straight back to base without discharging or cleaning.
func (a *Ambulance) toHospital(d *Dispatcher, e *Emergency) {
	e.State = EmergencyToHospital
	a.State = StateToHospital
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, e, d.Kernel.Now()))

	hospital, seg := d.selectHospital(e, a.CurrentPosition)
	if hospital == nil {
		logrus.Warnf("no compatible hospital reachable for emergency %s; ending rescue at scene", e.ID)
		e.State = EmergencyEnded
		a.CurrentEmergency = nil
		a.toBase(d)
		return
	}
	e.AssignedHospital = hospital

	travel := a.travelTo(d, seg)
	travel.Subscribe(func() {
		e.AtHospitalTime = d.Kernel.Now()
		e.State = EmergencyEnded
		d.Sink.LogRescue(rescueRecord(e, a))

		if a.Type == AmbulanceMV {
			a.CurrentEmergency = nil
			a.toBase(d)
			return
		}
		d.Kernel.Timeout(d.DischargingTime).Subscribe(func() {
			d.EmergencyServed(e)
			a.CurrentEmergency = nil
			a.cleaning(d)
		})
	})
}

// cleaning is the fixed post-discharge turnaround window (§4.3).
func (a *Ambulance) cleaning(d *Dispatcher) {
	a.State = StateCleaning
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, nil, d.Kernel.Now()))
	d.Kernel.Timeout(d.CleaningTime).Subscribe(func() {
		a.toBase(d)
	})
}

// toBase returns the ambulance to its base (§4.3, last bullet). If the
// projected arrival is before end of duty and the trip is short, the
// ambulance is reported assignable while still in motion; otherwise it is
// committed and cannot be redirected. Every exit path of this function is
// the end of a rescue cycle, so RescueFinishedSignal is retriggered here
// regardless of which branch is taken.
func (a *Ambulance) toBase(d *Dispatcher) {
	segs := d.Router.ComputeDistances([]Coordinate{a.CurrentPosition}, []Coordinate{a.Base})
	var seg Segment
	if len(segs) > 0 {
		seg = segs[0]
	} else {
		logrus.Warnf("router unavailable for ambulance %s return to base; assuming instantaneous arrival", a.ID)
		seg = Segment{Start: a.CurrentPosition, End: a.Base, Duration: 0, Distance: Haversine(a.CurrentPosition, a.Base)}
	}

	assignableWhileMoving := d.Kernel.Now()+seg.Duration < a.EndDuty && seg.Distance < d.DistanceThresholdKM
	if assignableWhileMoving {
		a.State = StateToBase
	} else {
		a.State = StateUnavailable
	}
	d.Sink.LogAmbulanceEvent(ambulanceEvent(a, nil, d.Kernel.Now()))

	travel := a.travelTo(d, seg)
	if assignableWhileMoving {
		d.AmbulanceAvailable(a)
	}

	AnyOf(travel, a.PreemptSignal).Subscribe(func() {
		if travel.Processed() {
			if d.Kernel.Now() < a.EndDuty {
				a.State = StateWaitingAtBase
			} else {
				a.State = StateUnavailable
			}
			d.Sink.LogAmbulanceEvent(ambulanceEvent(a, nil, d.Kernel.Now()))
		} else {
			a.CurrentPosition = a.currentPositionAt(d)
		}
		a.finishRescueCycle()
	})
}

// travelTo arms a timer for segment.Duration, latching the resulting
// position once it fires. Callers that need to race this against
// preemption read a.PreemptSignal themselves and, on a preempt win, call
// currentPositionAt before consuming the result of travelTo.
func (a *Ambulance) travelTo(d *Dispatcher, seg Segment) *Event {
	a.CurrentSegment = &seg
	a.CurrentRoute = nil
	a.Moving = true
	a.TravelStart = d.Kernel.Now()
	a.TravelTime = seg.Duration

	done := d.Kernel.Timeout(seg.Duration)
	done.Subscribe(func() {
		a.CurrentPosition = seg.End
		a.Moving = false
	})
	return done
}

// currentPositionAt interpolates the ambulance's position mid-leg, lazily
// materializing the turn-by-turn route on first use and snapping to the
// segment's end point if the elapsed time exceeds the route's own total
// (can happen with a stale or partial route decomposition).
func (a *Ambulance) currentPositionAt(d *Dispatcher) Coordinate {
	if !a.Moving || a.CurrentSegment == nil {
		return a.CurrentPosition
	}
	if a.CurrentRoute == nil {
		a.CurrentRoute = d.Router.ComputeRoute(a.CurrentSegment.Start, a.CurrentSegment.End)
	}

	elapsed := d.Kernel.Now() - a.TravelStart
	var acc int64
	for _, leg := range a.CurrentRoute {
		if elapsed < acc+leg.Duration {
			return leg.Start
		}
		acc += leg.Duration
	}
	return a.CurrentSegment.End
}

func ambulanceEvent(a *Ambulance, e *Emergency, now int64) trace.AmbulanceEventRecord {
	var emergencyID string
	if e != nil {
		emergencyID = e.ID
	}
	return trace.AmbulanceEventRecord{Ambulance: a.ID, Emergency: emergencyID, State: string(a.State), Time: now}
}

func rescueRecord(e *Emergency, a *Ambulance) trace.RescueRecord {
	var hospital string
	var atHospital int64
	if e.AssignedHospital != nil {
		hospital = e.AssignedHospital.ID
		atHospital = e.AtHospitalTime
	}
	return trace.RescueRecord{
		Emergency:   e.ID,
		Ambulance:   a.ID,
		Hospital:    hospital,
		Triage:      string(e.Triage),
		CallTime:    e.Timestamp,
		StartTime:   e.StartServingTime,
		AtEmergency: e.ReachingTime,
		AtHospital:  atHospital,
	}
}
