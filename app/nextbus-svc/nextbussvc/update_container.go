// Package nextbussvc serves the latest next-bus sensor states received over
// NATS to http clients
package nextbussvc

import (
	"sort"
	"sync"
	"time"

	"github.com/ura-tools/nextbus/business/data/ura"
)

// sensorStateCollection contains the latest update for each sensor and
// provides thread safe access to them
type sensorStateCollection struct {
	mu      sync.Mutex
	updates map[string]*ura.SensorUpdate
}

// makeSensorStateCollection sensorStateCollection factory
func makeSensorStateCollection() *sensorStateCollection {
	return &sensorStateCollection{
		updates: make(map[string]*ura.SensorUpdate),
	}
}

// addUpdate stores a new sensor update, discards it if the collection already
// contains a newer update for the same sensor
func (c *sensorStateCollection) addUpdate(newUpdate *ura.SensorUpdate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, present := c.updates[newUpdate.SensorId]; present {
		//new update is older than previous one, don't replace it
		if current.Timestamp > newUpdate.Timestamp {
			return false
		}
	}
	c.updates[newUpdate.SensorId] = newUpdate
	return true
}

// updateList returns all sensor updates currently stored, ordered by sensor id
func (c *sensorStateCollection) updateList() []*ura.SensorUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]*ura.SensorUpdate, 0, len(c.updates))
	for _, u := range c.updates {
		results = append(results, u)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SensorId < results[j].SensorId
	})
	return results
}

// getUpdate returns the latest update for a sensor id, or nil when the sensor
// is unknown
func (c *sensorStateCollection) getUpdate(sensorId string) *ura.SensorUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates[sensorId]
}

// expireUpdates removes all sensor updates that are older than
// "expireAfterSeconds". Returns the number of updates that have been removed
// and how many are currently stored.
func (c *sensorStateCollection) expireUpdates(at time.Time, expireAfterSeconds int) (removed int, currentSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newMap := make(map[string]*ura.SensorUpdate)
	for sensorId, u := range c.updates {
		seconds := uint64(at.Unix()) - u.Timestamp
		if seconds < uint64(expireAfterSeconds) {
			newMap[sensorId] = u
		}
	}
	previousSize := len(c.updates)
	c.updates = newMap
	currentSize = len(c.updates)
	return previousSize - currentSize, currentSize
}
