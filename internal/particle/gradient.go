package particle

// GradientKey is a single keyframe of a gradient.
type GradientKey[T any] struct {
	Ratio float32 `yaml:"ratio"` // Normalized lifetime position (0-1)
	Value T       `yaml:"value,flow"`
}

// Gradient is an ordered list of keyframes evaluated over a particle's
// lifetime.
//
// Keys are kept exactly in the order they were added. Nothing sorts,
// deduplicates or clamps them; a gradient with out-of-order keys is legal and
// evaluates to whatever Sample produces for that order.
type Gradient[T any] struct {
	Keys []GradientKey[T] `yaml:"keys"`
}

// NewGradient returns an empty gradient.
func NewGradient[T any]() Gradient[T] {
	return Gradient[T]{Keys: make([]GradientKey[T], 0)}
}

// AddKey appends a keyframe.
func (g *Gradient[T]) AddKey(ratio float32, value T) {
	g.Keys = append(g.Keys, GradientKey[T]{Ratio: ratio, Value: value})
}

// Len returns the number of keyframes.
func (g Gradient[T]) Len() int {
	return len(g.Keys)
}

// Sorted reports whether the key ratios are non-decreasing.
func (g Gradient[T]) Sorted() bool {
	for i := 1; i < len(g.Keys); i++ {
		if g.Keys[i].Ratio < g.Keys[i-1].Ratio {
			return false
		}
	}
	return true
}

// SampleVec3 evaluates a vec3 gradient at ratio t using linear interpolation.
func SampleVec3(g Gradient[Vec3], t float32) Vec3 {
	return sample(g.Keys, t, func(a, b Vec3, f float32) Vec3 {
		return Vec3{lerp(a[0], b[0], f), lerp(a[1], b[1], f), lerp(a[2], b[2], f)}
	})
}

// SampleVec4 evaluates a vec4 gradient at ratio t using linear interpolation.
func SampleVec4(g Gradient[Vec4], t float32) Vec4 {
	return sample(g.Keys, t, func(a, b Vec4, f float32) Vec4 {
		return Vec4{lerp(a[0], b[0], f), lerp(a[1], b[1], f), lerp(a[2], b[2], f), lerp(a[3], b[3], f)}
	})
}

// sample walks the keys in stored order:
//   - no keys yields the zero value
//   - t before the first key yields the first value
//   - t inside [k0, k1] interpolates between them
//   - t past every interval yields the last value
func sample[T any](keys []GradientKey[T], t float32, mix func(a, b T, f float32) T) T {
	var zero T
	if len(keys) == 0 {
		return zero
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	if t < keys[0].Ratio {
		return keys[0].Value
	}

	for i := 0; i < len(keys)-1; i++ {
		k0, k1 := keys[i], keys[i+1]
		if t >= k0.Ratio && t <= k1.Ratio {
			span := k1.Ratio - k0.Ratio
			if span <= 0 {
				return k0.Value
			}
			return mix(k0.Value, k1.Value, (t-k0.Ratio)/span)
		}
	}

	return keys[len(keys)-1].Value
}

func lerp(a, b, f float32) float32 {
	return a + f*(b-a)
}
