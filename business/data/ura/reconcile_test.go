package ura

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func makeTestPrediction(tripId string, estimated time.Time, expire time.Time) Prediction {
	return Prediction{
		TripId:          tripId,
		EstimatedTime:   estimated,
		ExpireTime:      expire,
		StopPointName:   "StopA",
		LineName:        "LineB",
		DestinationText: "DestC",
	}
}

func TestReconcile_carriesForwardMissingTrips(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	fresh := []Prediction{
		makeTestPrediction("trip1", now.Add(5*time.Minute), now.Add(time.Hour)),
	}
	previous := []Prediction{
		makeTestPrediction("trip2", now.Add(10*time.Minute), now.Add(time.Hour)),
	}

	retained := Reconcile(fresh, previous, now)

	is.Equal(len(retained), 2)             // trip2 carried forward next to trip1
	is.Equal(retained[0].TripId, "trip1")  // soonest arrival first
	is.Equal(retained[1].TripId, "trip2")
}

func TestReconcile_freshTripSupersedesRetained(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	fresh := []Prediction{
		makeTestPrediction("trip1", now.Add(7*time.Minute), now.Add(time.Hour)),
	}
	previous := []Prediction{
		makeTestPrediction("trip1", now.Add(5*time.Minute), now.Add(time.Hour)),
	}

	retained := Reconcile(fresh, previous, now)

	is.Equal(len(retained), 1)                                   // retained trip1 replaced by fresh one
	is.Equal(retained[0].EstimatedTime, now.Add(7*time.Minute)) // fresh estimate wins
}

func TestReconcile_containmentSuppressesCarryForward(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	// the fresh record's line name collides with the retained trip id, which
	// counts as a mention and suppresses the carry-forward
	fresh := []Prediction{
		{
			TripId:          "trip1",
			EstimatedTime:   now.Add(5 * time.Minute),
			ExpireTime:      now.Add(time.Hour),
			StopPointName:   "StopA",
			LineName:        "44",
			DestinationText: "DestC",
		},
	}
	previous := []Prediction{
		makeTestPrediction("44", now.Add(10*time.Minute), now.Add(time.Hour)),
	}

	retained := Reconcile(fresh, previous, now)

	is.Equal(len(retained), 1)
	is.Equal(retained[0].TripId, "trip1")
}

func TestReconcile_prunesPastAndExpired(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	fresh := []Prediction{
		makeTestPrediction("past", now.Add(-time.Minute), now.Add(time.Hour)),
		makeTestPrediction("expired", now.Add(5*time.Minute), now.Add(-time.Minute)),
		makeTestPrediction("valid", now.Add(5*time.Minute), now.Add(time.Hour)),
	}

	retained := Reconcile(fresh, nil, now)

	is.Equal(len(retained), 1)
	is.Equal(retained[0].TripId, "valid")
}

func TestReconcile_allExpiredYieldsEmptySet(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	previous := []Prediction{
		makeTestPrediction("trip1", now.Add(-time.Minute), now.Add(time.Hour)),
		makeTestPrediction("trip2", now.Add(5*time.Minute), now.Add(-time.Second)),
	}

	retained := Reconcile(nil, previous, now)

	is.Equal(len(retained), 0)
}

func TestReconcile_sortsAscendingByEstimatedTime(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	fresh := []Prediction{
		makeTestPrediction("third", now.Add(15*time.Minute), now.Add(time.Hour)),
		makeTestPrediction("first", now.Add(5*time.Minute), now.Add(time.Hour)),
		makeTestPrediction("second", now.Add(10*time.Minute), now.Add(time.Hour)),
	}

	retained := Reconcile(fresh, nil, now)

	is.Equal(len(retained), 3)
	is.Equal(retained[0].TripId, "first")
	is.Equal(retained[1].TripId, "second")
	is.Equal(retained[2].TripId, "third")
}

func TestReconcile_idempotentAgainstEmptyFetch(t *testing.T) {
	is := is.New(t)
	now := time.Date(2023, 11, 14, 22, 0, 0, 0, time.UTC)

	retained := Reconcile([]Prediction{
		makeTestPrediction("trip1", now.Add(5*time.Minute), now.Add(time.Hour)),
		makeTestPrediction("trip2", now.Add(10*time.Minute), now.Add(time.Hour)),
	}, nil, now)

	again := Reconcile(nil, retained, now)

	is.Equal(again, retained) // reconciling a pruned, sorted set against nothing reproduces it
}
