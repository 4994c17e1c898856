// Copyright 2025 James Ross
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Bound is an inclusive [Min, Max] range used by the validation engine to
// reject physiologically impossible values.
type Bound struct {
	Min float64
	Max float64
}

func (b Bound) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// ValidationConfig holds every per-field plausibility bound the validation
// engine checks. Defaults mirror the ranges a clinician would consider
// physiologically possible (if unusual), not merely typical.
type ValidationConfig struct {
	HeartRate              Bound
	RestingHeartRate       Bound
	Systolic               Bound
	Diastolic              Bound
	SleepEfficiency        Bound
	SleepIntervalToleranceMinutes int
	StepCount              Bound
	DistanceMetersMax      float64
	CaloriesMax            float64
	LatitudeRange          Bound
	LongitudeRange         Bound
	WorkoutMaxHours        float64
	BloodGlucose           Bound
	InsulinUnitsMax        float64
	RespiratoryRate        Bound
	SpO2                   Bound
	SpO2Critical           float64
	BodyTemperature        Bound
	BasalBodyTemperature   Bound
	WristTemperature       Bound
	WaterTemperature       Bound
	FeverThreshold         float64
	BodyWeightKg           Bound
	BMI                    Bound
	BodyFatPercent         Bound
	MenstrualCycleDay      Bound
	MenstrualCrampsRating  Bound
	MoodRating             Bound
	EnergyRating           Bound
	FertilityBasalTemp     Bound
	CervixFirmness         Bound
	CervixPosition         Bound
	LHLevel                Bound
}

// DefaultValidationConfig returns the plausibility bounds carried over from
// the original validation suite: heart rate 15-300bpm, blood pressure 50-250/30-150mmHg, sleep
// efficiency 0-100% with a 60 minute interval tolerance, steps up to
// 200,000/day, distance up to 500km, calories up to 20,000kcal, GPS in
// valid lat/long ranges, workouts up to 24h, glucose 30-600mg/dL with
// insulin up to 100 units, respiratory rate 5-60/min, SpO2 70-100% with a
// 90% critical threshold, temperatures in their sensor-appropriate ranges
// with fever at 38.0C, body weight 20-500kg, BMI 15-50, body fat 3-50%,
// and the reproductive-health and fertility-tracking bounds.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		HeartRate:                     Bound{15, 300},
		RestingHeartRate:              Bound{15, 300},
		Systolic:                      Bound{50, 250},
		Diastolic:                     Bound{30, 150},
		SleepEfficiency:               Bound{0, 100},
		SleepIntervalToleranceMinutes: 60,
		StepCount:                     Bound{0, 200000},
		DistanceMetersMax:             500_000,
		CaloriesMax:                   20000,
		LatitudeRange:                 Bound{-90, 90},
		LongitudeRange:                Bound{-180, 180},
		WorkoutMaxHours:               24,
		BloodGlucose:                  Bound{30, 600},
		InsulinUnitsMax:               100,
		RespiratoryRate:               Bound{5, 60},
		SpO2:                          Bound{70, 100},
		SpO2Critical:                  90,
		BodyTemperature:               Bound{30, 45},
		BasalBodyTemperature:          Bound{35, 39},
		WristTemperature:              Bound{30, 45},
		WaterTemperature:              Bound{0, 100},
		FeverThreshold:                38.0,
		BodyWeightKg:                  Bound{20, 500},
		BMI:                           Bound{15, 50},
		BodyFatPercent:                Bound{3, 50},
		MenstrualCycleDay:             Bound{1, 45},
		MenstrualCrampsRating:         Bound{0, 10},
		MoodRating:                    Bound{1, 5},
		EnergyRating:                  Bound{1, 5},
		FertilityBasalTemp:            Bound{35, 39},
		CervixFirmness:                Bound{1, 3},
		CervixPosition:                Bound{1, 3},
		LHLevel:                       Bound{0, 100},
	}
}

// Validate rejects a config whose bounds are internally inconsistent
// (min greater than max, or a negative tolerance/threshold).
func (c ValidationConfig) Validate() error {
	bounds := map[string]Bound{
		"heart_rate": c.HeartRate, "resting_heart_rate": c.RestingHeartRate,
		"systolic": c.Systolic, "diastolic": c.Diastolic,
		"sleep_efficiency": c.SleepEfficiency, "step_count": c.StepCount,
		"latitude": c.LatitudeRange, "longitude": c.LongitudeRange,
		"blood_glucose": c.BloodGlucose, "respiratory_rate": c.RespiratoryRate,
		"spo2": c.SpO2, "body_temperature": c.BodyTemperature,
		"basal_body_temperature": c.BasalBodyTemperature,
		"wrist_temperature": c.WristTemperature, "water_temperature": c.WaterTemperature,
		"body_weight_kg": c.BodyWeightKg, "bmi": c.BMI, "body_fat_percent": c.BodyFatPercent,
		"menstrual_cycle_day": c.MenstrualCycleDay, "menstrual_cramps_rating": c.MenstrualCrampsRating,
		"mood_rating": c.MoodRating, "energy_rating": c.EnergyRating,
		"fertility_basal_temp": c.FertilityBasalTemp, "cervix_firmness": c.CervixFirmness,
		"cervix_position": c.CervixPosition, "lh_level": c.LHLevel,
	}
	for name, b := range bounds {
		if b.Min > b.Max {
			return fmt.Errorf("validation config: %s min (%v) exceeds max (%v)", name, b.Min, b.Max)
		}
	}
	if c.SleepIntervalToleranceMinutes < 0 {
		return fmt.Errorf("validation config: sleep_interval_tolerance_minutes must be >= 0")
	}
	if c.DistanceMetersMax < 0 || c.CaloriesMax < 0 || c.WorkoutMaxHours < 0 || c.InsulinUnitsMax < 0 {
		return fmt.Errorf("validation config: max thresholds must be >= 0")
	}
	return nil
}

// LoadValidationConfig reads a YAML file (if present) and VALIDATION_*
// prefixed environment overrides into a ValidationConfig, following the
// same defaults-then-file-then-env layering as LoadBatchConfig.
func LoadValidationConfig(path string) (ValidationConfig, error) {
	def := DefaultValidationConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("validation")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setBoundDefaults := func(key string, b Bound) {
		v.SetDefault(key+"_min", b.Min)
		v.SetDefault(key+"_max", b.Max)
	}
	setBoundDefaults("heart_rate", def.HeartRate)
	setBoundDefaults("resting_heart_rate", def.RestingHeartRate)
	setBoundDefaults("systolic", def.Systolic)
	setBoundDefaults("diastolic", def.Diastolic)
	setBoundDefaults("sleep_efficiency", def.SleepEfficiency)
	setBoundDefaults("step_count", def.StepCount)
	setBoundDefaults("latitude", def.LatitudeRange)
	setBoundDefaults("longitude", def.LongitudeRange)
	setBoundDefaults("blood_glucose", def.BloodGlucose)
	setBoundDefaults("respiratory_rate", def.RespiratoryRate)
	setBoundDefaults("spo2", def.SpO2)
	setBoundDefaults("body_temperature", def.BodyTemperature)
	setBoundDefaults("basal_body_temperature", def.BasalBodyTemperature)
	setBoundDefaults("wrist_temperature", def.WristTemperature)
	setBoundDefaults("water_temperature", def.WaterTemperature)
	setBoundDefaults("body_weight_kg", def.BodyWeightKg)
	setBoundDefaults("bmi", def.BMI)
	setBoundDefaults("body_fat_percent", def.BodyFatPercent)
	setBoundDefaults("menstrual_cycle_day", def.MenstrualCycleDay)
	setBoundDefaults("menstrual_cramps_rating", def.MenstrualCrampsRating)
	setBoundDefaults("mood_rating", def.MoodRating)
	setBoundDefaults("energy_rating", def.EnergyRating)
	setBoundDefaults("fertility_basal_temp", def.FertilityBasalTemp)
	setBoundDefaults("cervix_firmness", def.CervixFirmness)
	setBoundDefaults("cervix_position", def.CervixPosition)
	setBoundDefaults("lh_level", def.LHLevel)

	v.SetDefault("sleep_interval_tolerance_minutes", def.SleepIntervalToleranceMinutes)
	v.SetDefault("distance_meters_max", def.DistanceMetersMax)
	v.SetDefault("calories_max", def.CaloriesMax)
	v.SetDefault("workout_max_hours", def.WorkoutMaxHours)
	v.SetDefault("spo2_critical", def.SpO2Critical)
	v.SetDefault("fever_threshold", def.FeverThreshold)
	v.SetDefault("insulin_units_max", def.InsulinUnitsMax)

	if err := readOptional(v, path); err != nil {
		return ValidationConfig{}, err
	}

	bound := func(key string) Bound {
		return Bound{v.GetFloat64(key + "_min"), v.GetFloat64(key + "_max")}
	}

	cfg := ValidationConfig{
		HeartRate:                     bound("heart_rate"),
		RestingHeartRate:              bound("resting_heart_rate"),
		Systolic:                      bound("systolic"),
		Diastolic:                     bound("diastolic"),
		SleepEfficiency:               bound("sleep_efficiency"),
		SleepIntervalToleranceMinutes: v.GetInt("sleep_interval_tolerance_minutes"),
		StepCount:                     bound("step_count"),
		DistanceMetersMax:             v.GetFloat64("distance_meters_max"),
		CaloriesMax:                   v.GetFloat64("calories_max"),
		LatitudeRange:                 bound("latitude"),
		LongitudeRange:                bound("longitude"),
		WorkoutMaxHours:               v.GetFloat64("workout_max_hours"),
		BloodGlucose:                  bound("blood_glucose"),
		InsulinUnitsMax:               v.GetFloat64("insulin_units_max"),
		RespiratoryRate:               bound("respiratory_rate"),
		SpO2:                          bound("spo2"),
		SpO2Critical:                  v.GetFloat64("spo2_critical"),
		BodyTemperature:               bound("body_temperature"),
		BasalBodyTemperature:          bound("basal_body_temperature"),
		WristTemperature:              bound("wrist_temperature"),
		WaterTemperature:              bound("water_temperature"),
		FeverThreshold:                v.GetFloat64("fever_threshold"),
		BodyWeightKg:                  bound("body_weight_kg"),
		BMI:                           bound("bmi"),
		BodyFatPercent:                bound("body_fat_percent"),
		MenstrualCycleDay:             bound("menstrual_cycle_day"),
		MenstrualCrampsRating:         bound("menstrual_cramps_rating"),
		MoodRating:                    bound("mood_rating"),
		EnergyRating:                  bound("energy_rating"),
		FertilityBasalTemp:            bound("fertility_basal_temp"),
		CervixFirmness:                bound("cervix_firmness"),
		CervixPosition:                bound("cervix_position"),
		LHLevel:                       bound("lh_level"),
	}

	if err := cfg.Validate(); err != nil {
		return ValidationConfig{}, err
	}
	return cfg, nil
}
