// Copyright 2025 James Ross
package model

import (
	"time"

	"github.com/google/uuid"
)

// Keyed is implemented by every per-family record type. NaturalKey returns
// a comparable value usable as a map key; two records of the same family
// collide for deduplication purposes iff their natural keys are equal.
type Keyed interface {
	NaturalKey() any
}

// Binder is implemented by every per-family record type. ColumnNames and
// Values describe the bind-parameter row the chunk executor persists;
// server-assigned columns (id, created_at) are never bound explicitly.
type Binder interface {
	ColumnNames() []string
	Values() []any
}

// HeartRateRecord carries one heart-rate sample.
type HeartRateRecord struct {
	RecordID                           string
	UserID                             uuid.UUID
	RecordedAt                         time.Time
	HeartRate                          *int
	RestingHeartRate                   *int
	HeartRateVariability               *float64
	WalkingHeartRateAverage            *int
	HeartRateRecoveryOneMinute         *int
	AtrialFibrillationBurdenPercentage *float64
	VO2MaxMlKgMin                      *float64
	Context                            ActivityContext
	SourceDevice                       *string
}

func (r HeartRateRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.RecordedAt}
}

var heartRateColumns = []string{
	"user_id", "recorded_at", "heart_rate", "resting_heart_rate",
	"heart_rate_variability", "walking_heart_rate_average",
	"heart_rate_recovery_one_minute", "atrial_fibrillation_burden_percentage",
	"vo2_max_ml_kg_min", "context", "source_device",
}

func (r HeartRateRecord) ColumnNames() []string { return heartRateColumns }

func (r HeartRateRecord) Values() []any {
	return []any{
		r.UserID, r.RecordedAt, r.HeartRate, r.RestingHeartRate,
		r.HeartRateVariability, r.WalkingHeartRateAverage,
		r.HeartRateRecoveryOneMinute, r.AtrialFibrillationBurdenPercentage,
		r.VO2MaxMlKgMin, string(r.Context), r.SourceDevice,
	}
}

// BloodPressureRecord carries one systolic/diastolic reading.
type BloodPressureRecord struct {
	RecordID     string
	UserID       uuid.UUID
	RecordedAt   time.Time
	Systolic     int
	Diastolic    int
	Pulse        *int
	SourceDevice *string
}

func (r BloodPressureRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.RecordedAt}
}

var bloodPressureColumns = []string{
	"user_id", "recorded_at", "systolic", "diastolic", "pulse", "source_device",
}

func (r BloodPressureRecord) ColumnNames() []string { return bloodPressureColumns }

func (r BloodPressureRecord) Values() []any {
	return []any{r.UserID, r.RecordedAt, r.Systolic, r.Diastolic, r.Pulse, r.SourceDevice}
}

// SleepRecord carries one sleep interval.
type SleepRecord struct {
	RecordID          string
	UserID            uuid.UUID
	SleepStart        time.Time
	SleepEnd          time.Time
	DurationMinutes   *int
	DeepSleepMinutes  *int
	RemSleepMinutes   *int
	LightSleepMinutes *int
	AwakeMinutes      *int
	Efficiency        *float64
	SourceDevice      *string
}

func (r SleepRecord) NaturalKey() any {
	return struct {
		User  uuid.UUID
		Start time.Time
		End   time.Time
	}{r.UserID, r.SleepStart, r.SleepEnd}
}

var sleepColumns = []string{
	"user_id", "sleep_start", "sleep_end", "duration_minutes",
	"deep_sleep_minutes", "rem_sleep_minutes", "light_sleep_minutes",
	"awake_minutes", "efficiency", "source_device",
}

func (r SleepRecord) ColumnNames() []string { return sleepColumns }

func (r SleepRecord) Values() []any {
	return []any{
		r.UserID, r.SleepStart, r.SleepEnd, r.DurationMinutes,
		r.DeepSleepMinutes, r.RemSleepMinutes, r.LightSleepMinutes,
		r.AwakeMinutes, r.Efficiency, r.SourceDevice,
	}
}

// ActivityRecord carries one day/window of movement metrics (extended set).
type ActivityRecord struct {
	RecordID                     string
	UserID                       uuid.UUID
	RecordedAt                   time.Time
	StepCount                    *int
	DistanceMeters               *float64
	FlightsClimbed               *int
	ActiveEnergyBurnedKcal       *float64
	BasalEnergyBurnedKcal        *float64
	AppleExerciseTimeMinutes     *int
	AppleStandTimeMinutes        *int
	AppleMoveTimeMinutes         *int
	AppleStandHourAchieved       *bool
	WalkingSpeedMPerS            *float64
	WalkingStepLengthCm          *float64
	WalkingStrideLengthCm        *float64
	WalkingAsymmetryPercent      *float64
	WalkingDoubleSupportPercent  *float64
	SixMinuteWalkTestDistanceM   *float64
	DistanceCyclingMeters        *float64
	DistanceSwimmingMeters       *float64
	SourceDevice                 *string
}

func (r ActivityRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.RecordedAt}
}

var activityColumns = []string{
	"user_id", "recorded_at", "step_count", "distance_meters", "flights_climbed",
	"active_energy_burned_kcal", "basal_energy_burned_kcal",
	"apple_exercise_time_minutes", "apple_stand_time_minutes",
	"apple_move_time_minutes", "apple_stand_hour_achieved",
	"walking_speed_m_per_s", "walking_step_length_cm", "walking_stride_length_cm",
	"walking_asymmetry_percent", "walking_double_support_percent",
	"six_minute_walk_test_distance_m", "distance_cycling_meters",
	"distance_swimming_meters", "source_device",
}

func (r ActivityRecord) ColumnNames() []string { return activityColumns }

func (r ActivityRecord) Values() []any {
	return []any{
		r.UserID, r.RecordedAt, r.StepCount, r.DistanceMeters, r.FlightsClimbed,
		r.ActiveEnergyBurnedKcal, r.BasalEnergyBurnedKcal,
		r.AppleExerciseTimeMinutes, r.AppleStandTimeMinutes,
		r.AppleMoveTimeMinutes, r.AppleStandHourAchieved,
		r.WalkingSpeedMPerS, r.WalkingStepLengthCm, r.WalkingStrideLengthCm,
		r.WalkingAsymmetryPercent, r.WalkingDoubleSupportPercent,
		r.SixMinuteWalkTestDistanceM, r.DistanceCyclingMeters,
		r.DistanceSwimmingMeters, r.SourceDevice,
	}
}

// WorkoutRecord carries one discrete exercise session.
type WorkoutRecord struct {
	RecordID         string
	UserID           uuid.UUID
	WorkoutType      WorkoutType
	StartedAt        time.Time
	EndedAt          time.Time
	TotalEnergyKcal  *float64
	ActiveEnergyKcal *float64
	DistanceMeters   *float64
	AvgHeartRate     *int
	MaxHeartRate     *int
	SourceDevice     *string
}

func (r WorkoutRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.StartedAt}
}

var workoutColumns = []string{
	"user_id", "workout_type", "started_at", "ended_at", "total_energy_kcal",
	"active_energy_kcal", "distance_meters", "avg_heart_rate",
	"max_heart_rate", "source_device",
}

func (r WorkoutRecord) ColumnNames() []string { return workoutColumns }

func (r WorkoutRecord) Values() []any {
	return []any{
		r.UserID, string(r.WorkoutType), r.StartedAt, r.EndedAt, r.TotalEnergyKcal,
		r.ActiveEnergyKcal, r.DistanceMeters, r.AvgHeartRate,
		r.MaxHeartRate, r.SourceDevice,
	}
}

// TemperatureRecord carries one temperature sample, possibly from multiple
// sensors (body, basal, wrist); classification priority is body > basal >
// wrist (see Priority).
type TemperatureRecord struct {
	RecordID                   string
	UserID                     uuid.UUID
	RecordedAt                 time.Time
	BodyTemperatureCelsius     *float64
	BasalBodyTemperatureCelsius *float64
	WristTemperatureCelsius    *float64
	WaterTemperatureCelsius    *float64
	Notes                      *string
	SourceDevice               *string
}

func (r TemperatureRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.RecordedAt}
}

var temperatureColumns = []string{
	"user_id", "recorded_at", "body_temperature_celsius",
	"basal_body_temperature_celsius", "wrist_temperature_celsius",
	"water_temperature_celsius", "notes", "source_device",
}

func (r TemperatureRecord) ColumnNames() []string { return temperatureColumns }

func (r TemperatureRecord) Values() []any {
	return []any{
		r.UserID, r.RecordedAt, r.BodyTemperatureCelsius,
		r.BasalBodyTemperatureCelsius, r.WristTemperatureCelsius,
		r.WaterTemperatureCelsius, r.Notes, r.SourceDevice,
	}
}

// Priority returns the classification priority for a non-nil temperature
// field: body (highest) > basal > wrist. Returns 0 if none are present.
func (r TemperatureRecord) Priority() int {
	switch {
	case r.BodyTemperatureCelsius != nil:
		return 3
	case r.BasalBodyTemperatureCelsius != nil:
		return 2
	case r.WristTemperatureCelsius != nil:
		return 1
	default:
		return 0
	}
}

// ReproductiveHealthRecord carries one cycle-tracking / fertility sample.
type ReproductiveHealthRecord struct {
	RecordID                string
	UserID                  uuid.UUID
	RecordedAt              time.Time
	MenstrualCycleDay       *int
	MenstrualCrampsSeverity *int
	MenstrualMoodRating     *int
	MenstrualEnergyLevel    *int
	FertilityBasalTemp      *float64
	FertilityCervixFirmness *int
	FertilityCervixPosition *int
	FertilityLHLevel        *float64
	SourceDevice            *string
}

func (r ReproductiveHealthRecord) NaturalKey() any {
	return struct {
		User uuid.UUID
		At   time.Time
	}{r.UserID, r.RecordedAt}
}

var reproductiveHealthColumns = []string{
	"user_id", "recorded_at", "menstrual_cycle_day", "menstrual_cramps_severity",
	"menstrual_mood_rating", "menstrual_energy_level", "fertility_basal_temp",
	"fertility_cervix_firmness", "fertility_cervix_position",
	"fertility_lh_level", "source_device",
}

func (r ReproductiveHealthRecord) ColumnNames() []string { return reproductiveHealthColumns }

func (r ReproductiveHealthRecord) Values() []any {
	return []any{
		r.UserID, r.RecordedAt, r.MenstrualCycleDay, r.MenstrualCrampsSeverity,
		r.MenstrualMoodRating, r.MenstrualEnergyLevel, r.FertilityBasalTemp,
		r.FertilityCervixFirmness, r.FertilityCervixPosition,
		r.FertilityLHLevel, r.SourceDevice,
	}
}
