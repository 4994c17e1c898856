// Copyright 2025 James Ross

// Package validate applies per-family range and cross-field plausibility
// rules to health records. Validation is pure and deterministic: given the
// same record and config it always returns the same verdict, and it never
// touches storage or the network.
package validate

import (
	"fmt"
	"time"

	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/model"
)

// Error reports a single field that failed a plausibility check.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

func fieldErr(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

const futureTolerance = 24 * time.Hour

func checkNotFuture(field string, t time.Time, now time.Time) *Error {
	if t.After(now.Add(futureTolerance)) {
		return fieldErr(field, "is more than 24h in the future")
	}
	return nil
}

func checkBound(field string, v float64, b config.Bound) *Error {
	if !b.Contains(v) {
		return fieldErr(field, "value %v outside plausible range [%v, %v]", v, b.Min, b.Max)
	}
	return nil
}

// HeartRate validates a heart-rate sample against cfg, using now as the
// reference instant for the future-timestamp rule.
func HeartRate(r model.HeartRateRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("recorded_at", r.RecordedAt, now); err != nil {
		return err
	}
	if r.HeartRate != nil {
		if err := checkBound("heart_rate", float64(*r.HeartRate), cfg.HeartRate); err != nil {
			return err
		}
	}
	if r.RestingHeartRate != nil {
		if err := checkBound("resting_heart_rate", float64(*r.RestingHeartRate), cfg.RestingHeartRate); err != nil {
			return err
		}
	}
	if r.Context != "" && !r.Context.Valid() {
		return fieldErr("context", "unrecognized activity context %q", r.Context)
	}
	return nil
}

// BloodPressure validates a systolic/diastolic reading, enforcing
// systolic > diastolic.
func BloodPressure(r model.BloodPressureRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("recorded_at", r.RecordedAt, now); err != nil {
		return err
	}
	if err := checkBound("systolic", float64(r.Systolic), cfg.Systolic); err != nil {
		return err
	}
	if err := checkBound("diastolic", float64(r.Diastolic), cfg.Diastolic); err != nil {
		return err
	}
	if r.Systolic <= r.Diastolic {
		return fieldErr("systolic", "systolic (%d) must be strictly greater than diastolic (%d)", r.Systolic, r.Diastolic)
	}
	return nil
}

// Sleep validates a sleep interval: the interval must be positively
// ordered, efficiency (if present) must be a percentage, and the recorded
// duration must match the interval within the configured tolerance.
func Sleep(r model.SleepRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("sleep_end", r.SleepEnd, now); err != nil {
		return err
	}
	if !r.SleepEnd.After(r.SleepStart) {
		return fieldErr("sleep_end", "must be strictly after sleep_start")
	}
	if r.Efficiency != nil {
		if err := checkBound("efficiency", *r.Efficiency, cfg.SleepEfficiency); err != nil {
			return err
		}
	}
	if r.DurationMinutes != nil {
		intervalMinutes := r.SleepEnd.Sub(r.SleepStart).Minutes()
		delta := intervalMinutes - float64(*r.DurationMinutes)
		if delta < 0 {
			delta = -delta
		}
		if delta > float64(cfg.SleepIntervalToleranceMinutes) {
			return fieldErr("duration_minutes", "duration %dmin does not match interval %.0fmin within tolerance %dmin",
				*r.DurationMinutes, intervalMinutes, cfg.SleepIntervalToleranceMinutes)
		}
	}
	return nil
}

// Activity validates a movement-metrics sample, including the stride
// length cross-check against step length when both are present.
func Activity(r model.ActivityRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("recorded_at", r.RecordedAt, now); err != nil {
		return err
	}
	if r.StepCount != nil {
		if err := checkBound("step_count", float64(*r.StepCount), cfg.StepCount); err != nil {
			return err
		}
	}
	if r.DistanceMeters != nil && *r.DistanceMeters > cfg.DistanceMetersMax {
		return fieldErr("distance_meters", "distance %.1fm exceeds maximum %.1fm", *r.DistanceMeters, cfg.DistanceMetersMax)
	}
	if r.ActiveEnergyBurnedKcal != nil && *r.ActiveEnergyBurnedKcal > cfg.CaloriesMax {
		return fieldErr("active_energy_burned_kcal", "exceeds maximum %.1f kcal", cfg.CaloriesMax)
	}
	if r.WalkingStrideLengthCm != nil && r.WalkingStepLengthCm != nil {
		if err := StrideStepRatio(*r.WalkingStrideLengthCm, *r.WalkingStepLengthCm); err != nil {
			return err
		}
	}
	return nil
}

// StrideStepRatio enforces the activity stride/step cross-field rule:
// stride length must sit within [1.5x, 2.5x] of step length when both are
// present. Exposed separately because the two samples may arrive in
// different records depending on the source device.
func StrideStepRatio(strideLengthCm, stepLengthCm float64) error {
	if stepLengthCm <= 0 {
		return nil
	}
	ratio := strideLengthCm / stepLengthCm
	if ratio < 1.5 || ratio > 2.5 {
		return fieldErr("stride_length", "stride/step ratio %.2f outside plausible range [1.5, 2.5]", ratio)
	}
	return nil
}

// Workout validates a discrete exercise session: ended_at must follow
// started_at, the session may not exceed the configured maximum duration,
// and any recorded heart rates must be plausible.
func Workout(r model.WorkoutRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("ended_at", r.EndedAt, now); err != nil {
		return err
	}
	if !r.EndedAt.After(r.StartedAt) {
		return fieldErr("ended_at", "must be strictly after started_at")
	}
	if r.EndedAt.Sub(r.StartedAt).Hours() > cfg.WorkoutMaxHours {
		return fieldErr("ended_at", "session exceeds maximum duration of %.0fh", cfg.WorkoutMaxHours)
	}
	if r.WorkoutType != "" && !r.WorkoutType.Valid() {
		return fieldErr("workout_type", "unrecognized workout type %q", r.WorkoutType)
	}
	if r.AvgHeartRate != nil {
		if err := checkBound("avg_heart_rate", float64(*r.AvgHeartRate), cfg.HeartRate); err != nil {
			return err
		}
	}
	if r.MaxHeartRate != nil {
		if err := checkBound("max_heart_rate", float64(*r.MaxHeartRate), cfg.HeartRate); err != nil {
			return err
		}
	}
	return nil
}

// Temperature validates a temperature sample across whichever sensor
// fields are present; classification priority (body > basal > wrist) is
// exposed via model.TemperatureRecord.Priority and is not used by
// validation itself.
func Temperature(r model.TemperatureRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("recorded_at", r.RecordedAt, now); err != nil {
		return err
	}
	if r.BodyTemperatureCelsius != nil {
		if err := checkBound("body_temperature_celsius", *r.BodyTemperatureCelsius, cfg.BodyTemperature); err != nil {
			return err
		}
	}
	if r.BasalBodyTemperatureCelsius != nil {
		if err := checkBound("basal_body_temperature_celsius", *r.BasalBodyTemperatureCelsius, cfg.BasalBodyTemperature); err != nil {
			return err
		}
	}
	if r.WristTemperatureCelsius != nil {
		if err := checkBound("wrist_temperature_celsius", *r.WristTemperatureCelsius, cfg.WristTemperature); err != nil {
			return err
		}
	}
	if r.WaterTemperatureCelsius != nil {
		if err := checkBound("water_temperature_celsius", *r.WaterTemperatureCelsius, cfg.WaterTemperature); err != nil {
			return err
		}
	}
	return nil
}

// ReproductiveHealth validates a cycle-tracking / fertility sample.
func ReproductiveHealth(r model.ReproductiveHealthRecord, cfg config.ValidationConfig, now time.Time) error {
	if err := checkNotFuture("recorded_at", r.RecordedAt, now); err != nil {
		return err
	}
	if r.MenstrualCycleDay != nil {
		if err := checkBound("menstrual_cycle_day", float64(*r.MenstrualCycleDay), cfg.MenstrualCycleDay); err != nil {
			return err
		}
	}
	if r.MenstrualCrampsSeverity != nil {
		if err := checkBound("menstrual_cramps_severity", float64(*r.MenstrualCrampsSeverity), cfg.MenstrualCrampsRating); err != nil {
			return err
		}
	}
	if r.MenstrualMoodRating != nil {
		if err := checkBound("menstrual_mood_rating", float64(*r.MenstrualMoodRating), cfg.MoodRating); err != nil {
			return err
		}
	}
	if r.MenstrualEnergyLevel != nil {
		if err := checkBound("menstrual_energy_level", float64(*r.MenstrualEnergyLevel), cfg.EnergyRating); err != nil {
			return err
		}
	}
	if r.FertilityBasalTemp != nil {
		if err := checkBound("fertility_basal_temp", *r.FertilityBasalTemp, cfg.FertilityBasalTemp); err != nil {
			return err
		}
	}
	if r.FertilityCervixFirmness != nil {
		if err := checkBound("fertility_cervix_firmness", float64(*r.FertilityCervixFirmness), cfg.CervixFirmness); err != nil {
			return err
		}
	}
	if r.FertilityCervixPosition != nil {
		if err := checkBound("fertility_cervix_position", float64(*r.FertilityCervixPosition), cfg.CervixPosition); err != nil {
			return err
		}
	}
	if r.FertilityLHLevel != nil {
		if err := checkBound("fertility_lh_level", *r.FertilityLHLevel, cfg.LHLevel); err != nil {
			return err
		}
	}
	return nil
}
