// Copyright 2025 James Ross
package validate

import (
	"time"

	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/model"
)

// RecordError attributes a validation failure to a family and the
// record's position in that family's input slice (before chunking).
type RecordError struct {
	Family model.Family
	Index  int
	Err    error
}

// Outcome partitions a payload into records that passed validation and the
// errors produced by records that did not. Family order in Valid mirrors
// model.IngestPayload; within a family, order is preserved.
type Outcome struct {
	Valid  model.IngestPayload
	Errors []RecordError
}

// Payload validates every record in payload against cfg, using now as the
// reference instant for future-timestamp checks. Invalid records are
// dropped from the returned Valid payload and reported in Errors; they do
// not prevent their siblings from being validated.
func Payload(payload *model.IngestPayload, cfg config.ValidationConfig, now time.Time) Outcome {
	var out Outcome

	for i, r := range payload.HeartRate {
		if err := HeartRate(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.HeartRate, i, err})
			continue
		}
		out.Valid.HeartRate = append(out.Valid.HeartRate, r)
	}
	for i, r := range payload.BloodPressure {
		if err := BloodPressure(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.BloodPressure, i, err})
			continue
		}
		out.Valid.BloodPressure = append(out.Valid.BloodPressure, r)
	}
	for i, r := range payload.Sleep {
		if err := Sleep(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.Sleep, i, err})
			continue
		}
		out.Valid.Sleep = append(out.Valid.Sleep, r)
	}
	for i, r := range payload.Activity {
		if err := Activity(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.Activity, i, err})
			continue
		}
		out.Valid.Activity = append(out.Valid.Activity, r)
	}
	for i, r := range payload.Workouts {
		if err := Workout(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.Workout, i, err})
			continue
		}
		out.Valid.Workouts = append(out.Valid.Workouts, r)
	}
	for i, r := range payload.Temperature {
		if err := Temperature(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.Temperature, i, err})
			continue
		}
		out.Valid.Temperature = append(out.Valid.Temperature, r)
	}
	for i, r := range payload.ReproductiveHealth {
		if err := ReproductiveHealth(r, cfg, now); err != nil {
			out.Errors = append(out.Errors, RecordError{model.ReproductiveHealth, i, err})
			continue
		}
		out.Valid.ReproductiveHealth = append(out.Valid.ReproductiveHealth, r)
	}

	return out
}
