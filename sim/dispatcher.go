package sim

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ems-sim/ems-sim/internal/invariant"
	"github.com/ems-sim/ems-sim/sim/policy"
	"github.com/ems-sim/ems-sim/sim/trace"
)

// Dispatcher holds the two triage-keyed priority queues and the
// availability set described in §4.4, and owns the matching algorithm.
// It carries only non-owning references to ambulances and emergencies
// (held by the process-wide rosters passed in at bootstrap).
type Dispatcher struct {
	Kernel *Kernel
	Router Router
	RNG    *PartitionedRNG
	Sink   trace.Sink
	Policy policy.MatchingPolicy

	Hospitals []*Hospital

	Preemptable          bool
	DistanceThresholdKM  float64
	TimeThresholdSeconds int64
	ServiceTimeThreshold int64
	DischargingTime      int64
	CleaningTime         int64
	CleanupInterval      int64
	CallLambda           map[TriageCode]float64

	Waiting   map[TriageCode][]*Emergency
	Serving   map[TriageCode][]*Emergency
	Available []*Ambulance
}

// NewDispatcher constructs a Dispatcher with empty queues.
func NewDispatcher(k *Kernel, router Router, rng *PartitionedRNG, sink trace.Sink, matching policy.MatchingPolicy, hospitals []*Hospital) *Dispatcher {
	return &Dispatcher{
		Kernel:    k,
		Router:    router,
		RNG:       rng,
		Sink:      sink,
		Policy:    matching,
		Hospitals: hospitals,
		Waiting:   make(map[TriageCode][]*Emergency),
		Serving:   make(map[TriageCode][]*Emergency),
	}
}

// NewEmergency implements §4.4.1: a triage-dependent call-handling delay,
// then a zero-delay barrier, then the matching run.
func (d *Dispatcher) NewEmergency(e *Emergency) {
	lambda := d.CallLambda[e.Triage]
	delay := int64(30 + d.RNG.Exponential(SubsystemCallDelay(e.Triage), lambda))
	d.Kernel.Timeout(delay).Subscribe(func() {
		d.Kernel.Timeout(0).Subscribe(func() {
			dispatched := d.runMatch(e)
			if dispatched {
				d.pushServing(e)
			} else {
				d.pushWaiting(e)
				logrus.Debugf("emergency %s (%s) has no available ambulance; queued", e.ID, e.Triage)
			}
			d.invariantCheckQueuesDisjoint()
			d.logQueueState()
		})
	})
}

// runMatch implements the matching table in §4.4.3. It returns true if an
// assignment (solo or paired) was made.
func (d *Dispatcher) runMatch(e *Emergency) bool {
	for _, step := range d.Policy.SearchOrder(policy.Triage(e.Triage)) {
		primaryType := AmbulanceType(step.Primary)
		primaryCands, primarySegs := d.getAmbulances(e, primaryType)
		if len(primaryCands) == 0 {
			continue
		}
		primary, primarySeg := primaryCands[0], primarySegs[0]

		if step.Pair != "" {
			pairType := AmbulanceType(step.Pair)
			pairCands, pairSegs := d.getAmbulances(e, pairType)
			if len(pairCands) > 0 {
				d.assignPair(e, primary, primarySeg, pairCands[0], pairSegs[0])
				return true
			}
		}
		d.assign(e, primary, primarySeg)
		return true
	}
	return false
}

// PreemptedEmergency implements §4.4.2.
func (d *Dispatcher) PreemptedEmergency(e *Emergency) {
	d.Kernel.Timeout(0).Subscribe(func() {
		d.removeServing(e)
		d.pushWaiting(e)
		d.logQueueState()
	})
}

// getAmbulances implements §4.4.4.
func (d *Dispatcher) getAmbulances(e *Emergency, atype AmbulanceType) ([]*Ambulance, []Segment) {
	var candidates []*Ambulance
	for _, a := range d.Available {
		if a.Type != atype {
			continue
		}
		if a.State != StateWaitingAtBase && !a.preemptableFor(d.Preemptable, e, d.Kernel.Now()) {
			continue
		}
		if Haversine(a.CurrentPosition, e.Place) >= d.DistanceThresholdKM {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	bases := make([]Coordinate, len(candidates))
	for i, a := range candidates {
		bases[i] = a.Base
	}
	segs := d.Router.ComputeDistances(bases, []Coordinate{e.Place})
	if len(segs) == 0 {
		return nil, nil
	}

	type scored struct {
		a *Ambulance
		s Segment
	}
	var kept []scored
	for i, seg := range segs {
		if seg.Duration < d.TimeThresholdSeconds {
			kept = append(kept, scored{candidates[i], seg})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		oi, oj := ambulanceStateOrdinal(kept[i].a.State), ambulanceStateOrdinal(kept[j].a.State)
		if oi != oj {
			return oi < oj
		}
		return kept[i].s.Duration < kept[j].s.Duration
	})

	outA := make([]*Ambulance, len(kept))
	outS := make([]Segment, len(kept))
	for i, k := range kept {
		outA[i], outS[i] = k.a, k.s
	}
	return outA, outS
}

// ambulanceStateOrdinal prefers waiting ambulances over preemptable moving
// ones when sorting candidates (§4.4.4 step 4).
func ambulanceStateOrdinal(s AmbulanceState) int {
	if s == StateWaitingAtBase {
		return 0
	}
	return 1
}

// AssignableAmbulance implements §4.4.5.
func (d *Dispatcher) AssignableAmbulance(a *Ambulance) {
	d.Kernel.Timeout(0).Subscribe(func() {
		if a.CurrentEmergency != nil {
			return
		}
		if a.Type == AmbulanceMV {
			return
		}

		candidates := d.waitingWithin(d.DistanceThresholdKM, a.CurrentPosition, TriageRed, TriageYellow)
		if len(candidates) == 0 {
			candidates = d.waitingWithin(d.DistanceThresholdKM, a.CurrentPosition, TriageGreen, TriageWhite)
		}
		if len(candidates) == 0 {
			return
		}

		places := make([]Coordinate, len(candidates))
		for i, e := range candidates {
			places[i] = e.Place
		}
		segs := d.Router.ComputeDistances([]Coordinate{a.CurrentPosition}, places)
		if len(segs) == 0 {
			return
		}

		type scored struct {
			e *Emergency
			s Segment
		}
		var kept []scored
		for i, seg := range segs {
			if seg.Duration < d.TimeThresholdSeconds {
				kept = append(kept, scored{candidates[i], seg})
			}
		}
		if len(kept) == 0 {
			return
		}
		sort.SliceStable(kept, func(i, j int) bool {
			oi, oj := kept[i].e.Triage.Ordinal(), kept[j].e.Triage.Ordinal()
			if oi != oj {
				return oi < oj
			}
			if kept[i].e.OccurringTime != kept[j].e.OccurringTime {
				return kept[i].e.OccurringTime < kept[j].e.OccurringTime
			}
			return kept[i].s.Duration < kept[j].s.Duration
		})

		e, seg := kept[0].e, kept[0].s
		if a.State != StateWaitingAtBase {
			invariant.Check(a.preemptableFor(d.Preemptable, e, d.Kernel.Now()),
				"ambulance %s preempted for emergency %s while not preemptable", a.ID, e.ID)
			a.triggerPreempt()
		}
		d.removeWaiting(e)
		d.pushServing(e)

		if e.Triage == TriageRed {
			mvCands, mvSegs := d.getAmbulances(e, AmbulanceMV)
			if len(mvCands) > 0 {
				mv, mvSeg := mvCands[0], mvSegs[0]
				if mvSeg.Duration < seg.Duration || float64(mvSeg.Duration) < 1.1*float64(d.ServiceTimeThreshold) {
					d.assignPair(e, a, seg, mv, mvSeg)
					d.logQueueState()
					return
				}
			}
		}
		d.assign(e, a, seg)
		d.logQueueState()
	})
}

// AmbulanceAvailable implements §4.4.6.
func (d *Dispatcher) AmbulanceAvailable(a *Ambulance) {
	d.Available = append(d.Available, a)
	d.AssignableAmbulance(a)
}

// AmbulanceUnavailable implements §4.4.6: returns an immediately-triggered
// event if a was waiting, else a's rescue-finished latch so shift() blocks
// until the in-flight rescue completes before going off-duty.
func (d *Dispatcher) AmbulanceUnavailable(a *Ambulance) *Event {
	wasWaiting := a.State == StateWaitingAtBase
	d.removeAvailable(a)
	if wasWaiting {
		ev := NewEvent()
		ev.Trigger()
		return ev
	}
	return a.RescueFinishedSignal
}

// EmergencyServed implements §4.4.6.
func (d *Dispatcher) EmergencyServed(e *Emergency) {
	d.removeServing(e)
	d.invariantCheckQueuesDisjoint()
}

// RunCleanupLoop starts the dispatcher-owned stale-call sweep (§4.4.7).
func (d *Dispatcher) RunCleanupLoop() {
	d.scheduleCleanup()
}

func (d *Dispatcher) scheduleCleanup() {
	d.Kernel.Timeout(d.CleanupInterval).Subscribe(func() {
		now := d.Kernel.Now()
		for triage, queue := range d.Waiting {
			kept := queue[:0]
			for _, e := range queue {
				if now-e.OccurringTime > d.CleanupInterval {
					logrus.Warnf("cleanup: dropping abandoned %s emergency %s (waited %ds)", triage, e.ID, now-e.OccurringTime)
				} else {
					kept = append(kept, e)
				}
			}
			d.Waiting[triage] = kept
		}
		if now < d.Kernel.Horizon {
			d.scheduleCleanup()
		}
	})
}

// selectHospital implements hospital selection (§4.3): among compatible
// hospitals, the minimum by travel duration, ties broken by insertion
// order (i.e. first occurrence in d.Hospitals, which getAmbulances-style
// router calls already preserve).
func (d *Dispatcher) selectHospital(e *Emergency, from Coordinate) (*Hospital, Segment) {
	var compatible []*Hospital
	for _, h := range d.Hospitals {
		if h.Compatible(e.NeededHospitalType) {
			compatible = append(compatible, h)
		}
	}
	if len(compatible) == 0 {
		return nil, Segment{}
	}

	places := make([]Coordinate, len(compatible))
	for i, h := range compatible {
		places[i] = h.Place
	}
	segs := d.Router.ComputeDistances([]Coordinate{from}, places)
	if len(segs) == 0 {
		return nil, Segment{}
	}

	best := 0
	for i := 1; i < len(segs); i++ {
		if segs[i].Duration < segs[best].Duration {
			best = i
		}
	}
	return compatible[best], segs[best]
}

func (d *Dispatcher) waitingWithin(thresholdKM float64, from Coordinate, triages ...TriageCode) []*Emergency {
	var out []*Emergency
	for _, t := range triages {
		for _, e := range d.Waiting[t] {
			if Haversine(from, e.Place) < thresholdKM {
				out = append(out, e)
			}
		}
	}
	return out
}

func (d *Dispatcher) pushWaiting(e *Emergency) {
	d.Waiting[e.Triage] = append(d.Waiting[e.Triage], e)
}

func (d *Dispatcher) pushServing(e *Emergency) {
	d.Serving[e.Triage] = append(d.Serving[e.Triage], e)
}

func (d *Dispatcher) removeWaiting(e *Emergency) {
	d.Waiting[e.Triage] = removeEmergency(d.Waiting[e.Triage], e)
}

func (d *Dispatcher) removeServing(e *Emergency) {
	d.Serving[e.Triage] = removeEmergency(d.Serving[e.Triage], e)
}

func removeEmergency(q []*Emergency, e *Emergency) []*Emergency {
	for i, x := range q {
		if x == e {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

func (d *Dispatcher) removeAvailable(a *Ambulance) {
	for i, x := range d.Available {
		if x == a {
			d.Available = append(d.Available[:i], d.Available[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) logQueueState() {
	for _, t := range []TriageCode{TriageRed, TriageYellow, TriageGreen, TriageWhite} {
		logrus.Debugf("dispatch[%s]: waiting=%d serving=%d", t, len(d.Waiting[t]), len(d.Serving[t]))
	}
}

// invariantCheckQueuesDisjoint verifies the presence invariant from §8:
// every emergency is in at most one of {waiting[*], serving[*]}.
func (d *Dispatcher) invariantCheckQueuesDisjoint() {
	seen := make(map[*Emergency]bool)
	for _, q := range d.Waiting {
		for _, e := range q {
			invariant.Check(!seen[e], "emergency %s present in multiple dispatcher queues", e.ID)
			seen[e] = true
		}
	}
	for _, q := range d.Serving {
		for _, e := range q {
			invariant.Check(!seen[e], "emergency %s present in multiple dispatcher queues", e.ID)
			seen[e] = true
		}
	}
}
