package crab

// AIThresholds are the timers and distances which drive the AI. Times are in
// seconds, distances in pixels and angles in degrees.
type AIThresholds struct {

	// How long to aim before firing anyway, and how long each burst lasts.
	AimTimeout float64 `yaml:"AimTimeout"`
	FireBurst  float64 `yaml:"FireBurst"`

	// Half-angle of the look cone, and how far it reaches.
	LookConeDegrees float64 `yaml:"LookConeDegrees"`
	LookDistance    float64 `yaml:"LookDistance"`

	// How close to the wanted aim angle counts as on target.
	AimToleranceDegrees float64 `yaml:"AimToleranceDegrees"`

	// How long to point at an alarm before going back to scanning.
	PointTimeout float64 `yaml:"PointTimeout"`

	SweepRangeDegrees float64 `yaml:"SweepRangeDegrees"`
	SweepTime         float64 `yaml:"SweepTime"`
	SweepPause        float64 `yaml:"SweepPause"`

	// Moving slower than StuckSpeed (m/s) for StuckTime means stuck.
	StuckTime    float64 `yaml:"StuckTime"`
	StuckSpeed   float64 `yaml:"StuckSpeed"`
	BackstepTime float64 `yaml:"BackstepTime"`

	// How long to walk one way before turning around, on patrol.
	PatrolTime float64 `yaml:"PatrolTime"`

	// GOTO stops this close to the target.
	ArriveDistance float64 `yaml:"ArriveDistance"`

	PreDigTime   float64 `yaml:"PreDigTime"`
	StartDigTime float64 `yaml:"StartDigTime"`
	DigTimeout   float64 `yaml:"DigTimeout"`
	DigPause     float64 `yaml:"DigPause"`

	ForwardJumpTimeout float64 `yaml:"ForwardJumpTimeout"`
	PreUpJumpTime      float64 `yaml:"PreUpJumpTime"`
	PreUpJumpTimeout   float64 `yaml:"PreUpJumpTimeout"`
	UpJumpTimeout      float64 `yaml:"UpJumpTimeout"`
	ApexJumpTimeout    float64 `yaml:"ApexJumpTimeout"`
	LandJumpTimeout    float64 `yaml:"LandJumpTimeout"`

	// Obstacles up to this high are jumped. Gaps are looked for this far ahead.
	MaxJumpHeight float64 `yaml:"MaxJumpHeight"`
	GapDistance   float64 `yaml:"GapDistance"`

	// How long an obstacle manoeuvre can take before giving up on it.
	ObstacleTimeout float64 `yaml:"ObstacleTimeout"`
}

func DefaultAIThresholds() AIThresholds {
	return AIThresholds{
		AimTimeout:          2.5,
		FireBurst:           0.5,
		LookConeDegrees:     5,
		LookDistance:        400,
		AimToleranceDegrees: 3,
		PointTimeout:        2,
		SweepRangeDegrees:   30,
		SweepTime:           1,
		SweepPause:          0.3,
		StuckTime:           1.5,
		StuckSpeed:          0.5,
		BackstepTime:        0.5,
		PatrolTime:          8,
		ArriveDistance:      10,
		PreDigTime:          0.3,
		StartDigTime:        0.5,
		DigTimeout:          4,
		DigPause:            0.5,
		ForwardJumpTimeout:  1.5,
		PreUpJumpTime:       0.1,
		PreUpJumpTimeout:    0.5,
		UpJumpTimeout:       1.5,
		ApexJumpTimeout:     1,
		LandJumpTimeout:     1,
		MaxJumpHeight:       60,
		GapDistance:         30,
		ObstacleTimeout:     4,
	}
}
