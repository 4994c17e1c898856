// Copyright 2025 James Ross
package model

// Family identifies one of the seven recognized health metric categories.
type Family string

const (
	HeartRate          Family = "heart_rate"
	BloodPressure      Family = "blood_pressure"
	Sleep              Family = "sleep"
	Activity           Family = "activity"
	Workout            Family = "workout"
	Temperature        Family = "temperature"
	ReproductiveHealth Family = "reproductive_health"
)

// AllFamilies lists every family in the sequential dispatch order used when
// parallel processing is disabled.
var AllFamilies = []Family{
	HeartRate,
	BloodPressure,
	Sleep,
	Activity,
	Workout,
	Temperature,
	ReproductiveHealth,
}

// Columns is the per-family persisted column count, fixed at build time.
// Chunk sizes are derived from this, never hand-picked (see chunkbudget).
var Columns = map[Family]int{
	HeartRate:          11,
	BloodPressure:      6,
	Sleep:              10,
	Activity:           20,
	Workout:            10,
	Temperature:        8,
	ReproductiveHealth: 11,
}

// Table returns the destination table name for a family.
func (f Family) Table() string {
	switch f {
	case HeartRate:
		return "heart_rate_metrics"
	case BloodPressure:
		return "blood_pressure_metrics"
	case Sleep:
		return "sleep_metrics"
	case Activity:
		return "activity_metrics"
	case Workout:
		return "workouts"
	case Temperature:
		return "temperature_metrics"
	case ReproductiveHealth:
		return "reproductive_health_metrics"
	default:
		return string(f)
	}
}

func (f Family) String() string { return string(f) }
