package schedule

import (
	"time"

	"github.com/google/uuid"
)

const (
	// LookaheadDays bounds how many calendar days Search scans, starting day included.
	LookaheadDays = 15
	// ResultDays is how many qualifying days Search collects before stopping.
	ResultDays = 3
)

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty string
}

// Agenda is everything the reconciler needs to know about one doctor.
type Agenda struct {
	Doctor Doctor
	Rules  []Rule
	Booked []time.Time // appointment start times
}

type Slot struct {
	RuleID uuid.UUID
	Window Interval
}

type DoctorSlots struct {
	Doctor Doctor
	Slots  []Slot
}

type Day struct {
	Date    time.Time
	Doctors []DoctorSlots
}

// OpenSlots returns the agenda's slots on day that no appointment starts at.
// Slots keep the order of a.Rules.
func OpenSlots(day time.Time, a Agenda) []Slot {
	booked := make(map[int64]struct{}, len(a.Booked))
	for _, b := range a.Booked {
		booked[b.UTC().UnixNano()] = struct{}{}
	}

	var out []Slot
	for _, r := range a.Rules {
		w, ok := r.WindowOn(day)
		if !ok {
			continue
		}
		if _, taken := booked[w.Start.On(day).UnixNano()]; taken {
			continue
		}
		out = append(out, Slot{RuleID: r.ID, Window: w})
	}
	return out
}

// Search scans forward from the UTC day of from, one day at a time, for at most
// LookaheadDays days, and stops once ResultDays days with at least one open slot
// have been collected. Doctors keep the order of agendas.
func Search(from time.Time, agendas []Agenda) []Day {
	days := make([]Day, 0, ResultDays)
	start := DateOf(from)

	for offset := 0; offset < LookaheadDays && len(days) < ResultDays; offset++ {
		day := start.AddDate(0, 0, offset)

		var doctors []DoctorSlots
		for _, a := range agendas {
			if slots := OpenSlots(day, a); len(slots) > 0 {
				doctors = append(doctors, DoctorSlots{Doctor: a.Doctor, Slots: slots})
			}
		}
		if len(doctors) > 0 {
			days = append(days, Day{Date: day, Doctors: doctors})
		}
	}
	return days
}

// SearchWindow is the [from, until) range of appointment start times Search can collide with.
func SearchWindow(from time.Time) (time.Time, time.Time) {
	start := DateOf(from)
	return start, start.AddDate(0, 0, LookaheadDays)
}
