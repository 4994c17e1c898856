// Copyright 2025 James Ross
package model

// ActivityContext classifies the circumstances under which a heart-rate
// sample was taken, mirroring the original source's models::enums module.
type ActivityContext string

const (
	ActivityContextResting  ActivityContext = "resting"
	ActivityContextActive   ActivityContext = "active"
	ActivityContextExercise ActivityContext = "exercise"
	ActivityContextSleeping ActivityContext = "sleeping"
	ActivityContextUnknown  ActivityContext = ""
)

func (c ActivityContext) Valid() bool {
	switch c {
	case ActivityContextResting, ActivityContextActive, ActivityContextExercise, ActivityContextSleeping, ActivityContextUnknown:
		return true
	default:
		return false
	}
}

// WorkoutType enumerates the recognized workout activity types.
type WorkoutType string

const (
	WorkoutTypeRunning  WorkoutType = "running"
	WorkoutTypeWalking  WorkoutType = "walking"
	WorkoutTypeCycling  WorkoutType = "cycling"
	WorkoutTypeSwimming WorkoutType = "swimming"
	WorkoutTypeStrength WorkoutType = "strength_training"
	WorkoutTypeOther    WorkoutType = "other"
)

func (t WorkoutType) Valid() bool {
	switch t {
	case WorkoutTypeRunning, WorkoutTypeWalking, WorkoutTypeCycling, WorkoutTypeSwimming, WorkoutTypeStrength, WorkoutTypeOther:
		return true
	default:
		return false
	}
}
