package particle

// Range is a CPU-side value that is either a single number (Min == Max) or a
// uniform random range sampled by the runtime.
type Range struct {
	Min float32 `yaml:"min" json:"min"`
	Max float32 `yaml:"max" json:"max"`
}

// Single returns a range holding exactly v.
func Single(v float32) Range {
	return Range{Min: v, Max: v}
}

// Uniform returns a range sampled uniformly between lo and hi.
func Uniform(lo, hi float32) Range {
	return Range{Min: lo, Max: hi}
}

// IsSingle reports whether the range holds exactly one value.
func (r Range) IsSingle() bool {
	return r.Min == r.Max
}

// SpawnerSettings controls how many particles an effect emits and when.
//
// Each cycle emits Count particles spread over SpawnDuration seconds, then
// waits until Period seconds have passed since the cycle started.
// CycleCount 0 repeats forever.
type SpawnerSettings struct {
	Count         Range  `yaml:"count" json:"count"`
	SpawnDuration Range  `yaml:"spawn_duration" json:"spawn_duration"`
	Period        Range  `yaml:"period" json:"period"`
	CycleCount    uint32 `yaml:"cycle_count" json:"cycle_count"`
}

// Rate returns settings that emit a steady stream of perSecond particles
// per second, forever.
func Rate(perSecond float32) SpawnerSettings {
	return SpawnerSettings{
		Count:         Single(perSecond),
		SpawnDuration: Single(1),
		Period:        Single(1),
		CycleCount:    0,
	}
}

// Once returns settings that emit count particles in a single burst.
func Once(count float32) SpawnerSettings {
	return SpawnerSettings{
		Count:         Single(count),
		SpawnDuration: Single(0),
		Period:        Single(0),
		CycleCount:    1,
	}
}
