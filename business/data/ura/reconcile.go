package ura

import (
	"sort"
	"time"
)

// Reconcile merges freshly parsed predictions with the set retained from the
// previous poll cycle, drops entries whose arrival or validity deadline has
// passed, and returns the new retained set sorted ascending by estimated
// time. Retained predictions whose trip id the fresh fetch did not mention
// are carried forward, covering partial or delayed upstream updates.
func Reconcile(fresh []Prediction, previous []Prediction, now time.Time) []Prediction {
	merged := make([]Prediction, 0, len(fresh)+len(previous))
	merged = append(merged, fresh...)
	for _, prediction := range previous {
		if !containsTripId(fresh, prediction.TripId) {
			merged = append(merged, prediction)
		}
	}

	retained := make([]Prediction, 0, len(merged))
	for _, prediction := range merged {
		if prediction.Expired(now) {
			continue
		}
		retained = append(retained, prediction)
	}

	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].EstimatedTime.Before(retained[j].EstimatedTime)
	})
	return retained
}

// containsTripId reports whether tripId appears in any textual field of any
// prediction, not just the trip id field. The upstream merge checks the
// identifier against the whole record, so a fresh record whose descriptive
// text matches a retained trip id also suppresses the carry-forward.
func containsTripId(predictions []Prediction, tripId string) bool {
	for _, p := range predictions {
		if p.TripId == tripId || p.StopPointName == tripId ||
			p.LineName == tripId || p.DestinationText == tripId {
			return true
		}
	}
	return false
}
