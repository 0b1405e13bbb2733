package scheduler

import (
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// reorder sorts the queue and reassigns every window. Callers hold the lock.
func (s *Scheduler) reorder() {
	sortEntries(s.active)
	placed := make([]model.TimeWindow, 0, len(s.active))
	for _, e := range s.active {
		e.task.Window, e.task.Conflicted = s.place(&e.task, placed)
		placed = append(placed, e.task.Window)
	}
}

// place returns the earliest window inside the task deadline that keeps the
// crew within capacity and, for disruptive work, stays out of rush hours.
// When rush hours cannot be avoided the earliest crew-feasible window is
// used; when even that fails the task starts at its optimal date. Both
// fallbacks are flagged as conflicted.
func (s *Scheduler) place(t *model.MaintenanceTask, placed []model.TimeWindow) (model.TimeWindow, bool) {
	slot := time.Duration(s.cfg.SlotMinutes) * time.Minute
	first := ceilTo(t.OptimalDate, slot)
	disruptive := t.Impact.Severity >= model.ImpactMedium

	var (
		fallback model.TimeWindow
		found    bool
	)
	for start := first; !start.Add(t.Duration).After(t.Deadline); start = start.Add(slot) {
		w := model.TimeWindow{Start: start, End: start.Add(t.Duration)}
		if s.crewBusy(w, placed) {
			continue
		}
		if disruptive && s.inRush(w) {
			if !found {
				fallback, found = w, true
			}
			continue
		}
		return w, false
	}
	if found {
		return fallback, true
	}
	return model.TimeWindow{Start: first, End: first.Add(t.Duration)}, true
}

func (s *Scheduler) crewBusy(w model.TimeWindow, placed []model.TimeWindow) bool {
	n := 0
	for _, p := range placed {
		if p.Overlaps(w) {
			n++
		}
	}
	return n >= s.cfg.CrewCapacity
}

func (s *Scheduler) inRush(w model.TimeWindow) bool {
	y, m, d := w.Start.Date()
	for day0 := time.Date(y, m, d, 0, 0, 0, 0, w.Start.Location()); day0.Before(w.End); day0 = day0.AddDate(0, 0, 1) {
		for _, b := range s.cfg.RushHours {
			band := model.TimeWindow{
				Start: day0.Add(time.Duration(b.Start) * time.Hour),
				End:   day0.Add(time.Duration(b.End) * time.Hour),
			}
			if band.Overlaps(w) {
				return true
			}
		}
	}
	return false
}

func ceilTo(t time.Time, d time.Duration) time.Time {
	c := t.Truncate(d)
	if c.Before(t) {
		c = c.Add(d)
	}
	return c
}
