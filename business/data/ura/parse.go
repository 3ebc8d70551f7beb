package ura

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// field positions within a URA prediction record
const (
	fieldRecordType = iota
	fieldStopPointName
	fieldLineName
	fieldDestinationText
	fieldTripId
	fieldEstimatedTime
	fieldExpireTime

	predictionFieldCount = 7
)

// ParsePredictions reads a raw URA instant response into Predictions.
// The response holds one JSON array per line; only records whose first
// element is the prediction discriminator 1 are used, other record types are
// skipped. A line that fails to parse, is missing fields, or carries a
// non-numeric time ends parsing for this cycle, but the predictions gathered
// from earlier lines are kept and returned.
func ParsePredictions(log *log.Logger, raw string) []Prediction {
	var predictions []Prediction
	for _, line := range splitLines(raw) {
		var record []interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			log.Printf("erroneous result found when expecting list of predictions: %v\n", err)
			return predictions
		}
		if len(record) < 1 || !isPredictionRecord(record[fieldRecordType]) {
			continue
		}
		prediction, err := makePrediction(record)
		if err != nil {
			log.Printf("erroneous result found when expecting list of predictions: %v\n", err)
			return predictions
		}
		predictions = append(predictions, *prediction)
	}
	return predictions
}

// makePrediction builds a Prediction from the positional fields of a URA
// prediction record
func makePrediction(record []interface{}) (*Prediction, error) {
	if len(record) < predictionFieldCount {
		return nil, fmt.Errorf("prediction record has %d fields, expected %d", len(record), predictionFieldCount)
	}
	estimatedTime, err := timeField(record[fieldEstimatedTime])
	if err != nil {
		return nil, fmt.Errorf("estimated time: %w", err)
	}
	expireTime, err := timeField(record[fieldExpireTime])
	if err != nil {
		return nil, fmt.Errorf("expire time: %w", err)
	}
	return &Prediction{
		TripId:          stringField(record[fieldTripId]),
		EstimatedTime:   estimatedTime,
		ExpireTime:      expireTime,
		StopPointName:   stringField(record[fieldStopPointName]),
		LineName:        stringField(record[fieldLineName]),
		DestinationText: stringField(record[fieldDestinationText]),
	}, nil
}

// isPredictionRecord tests the record type discriminator. The feed sends the
// discriminator as the number 1, some deployments quote it.
func isPredictionRecord(discriminator interface{}) bool {
	switch v := discriminator.(type) {
	case float64:
		return v == 1
	case string:
		return v == "1"
	}
	return false
}

// timeField converts a millisecond epoch field to a second granularity UTC
// timestamp, discarding sub-second precision
func timeField(value interface{}) (time.Time, error) {
	millis, ok := value.(float64)
	if !ok {
		return time.Time{}, fmt.Errorf("expected numeric millisecond timestamp, found %v", value)
	}
	return time.Unix(int64(millis)/1000, 0).UTC(), nil
}

// stringField renders a positional field as text. Trip ids in particular
// arrive as numbers from some deployments and as strings from others.
func stringField(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// splitLines splits the raw response body on line endings, dropping the
// empty remainder a trailing newline produces
func splitLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
