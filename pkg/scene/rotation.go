package scene

import "cogentcore.org/core/math32"

// angleEpsilon is the tolerance, in degrees, when deciding whether a
// rotation angle counts as a quarter turn.
const angleEpsilon = 1

// EffectiveBounds computes the axis-aligned bounding size of an item after
// applying its rotation angles (degrees). A rotation of ~90 or ~270 degrees
// about one axis swaps the two dimensions orthogonal to that axis. The three
// swap decisions are independent and applied in a fixed order: Z, then Y,
// then X, each to the running triple.
//
// Angles are normalized modulo 360 and compared within ±1 degree. Arbitrary
// angles are accepted, but only their nearest quarter-turn swap behavior is
// modeled; intermediate angles render with the unrotated axis-aligned box.
func EffectiveBounds(size, rotation math32.Vector3) math32.Vector3 {
	w, h, d := size.X, size.Y, size.Z
	if isQuarterTurn(rotation.Z) {
		w, h = h, w
	}
	if isQuarterTurn(rotation.Y) {
		w, d = d, w
	}
	if isQuarterTurn(rotation.X) {
		h, d = d, h
	}
	return math32.Vec3(w, h, d)
}

// isQuarterTurn reports whether deg normalizes to ~90 or ~270 degrees.
func isQuarterTurn(deg float32) bool {
	a := math32.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return math32.Abs(a-90) <= angleEpsilon || math32.Abs(a-270) <= angleEpsilon
}
