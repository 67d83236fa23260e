package camera

import (
	"testing"

	"cogentcore.org/core/math32"

	"github.com/binpack3d/packview/pkg/document"
)

var testContainer = document.Container{Width: 10, Height: 5, Depth: 5}

func TestFrameAxisViews(t *testing.T) {
	c := NewController()

	tests := []struct {
		mode ViewMode
		axis math32.Vector3 // expected offset direction from target
	}{
		{Top, math32.Vec3(0, 1, 0)},
		{Front, math32.Vec3(0, 0, 1)},
		{Side, math32.Vec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			st := c.Frame(testContainer, false, tt.mode)

			if st.OrbitEnabled {
				t.Error("orbit must be disabled outside perspective")
			}
			if !st.PanEnabled {
				t.Error("pan must be retained in axis views")
			}
			if st.OrthoHalf <= 0 {
				t.Errorf("ortho half-extent = %v, want > 0", st.OrthoHalf)
			}

			offset := st.Position.Sub(st.Target)
			if dir := offset.Normal(); dir != tt.axis {
				t.Errorf("camera offset direction = %v, want %v", dir, tt.axis)
			}

			// Axis views sit at a fixed multiple of the largest relevant
			// dimension, so the camera is always outside the container.
			if offset.Length() < 10 {
				t.Errorf("camera distance = %v, too close", offset.Length())
			}
		})
	}
}

func TestFramePerspective(t *testing.T) {
	c := NewController()
	st := c.Frame(testContainer, false, Perspective)

	if !st.OrbitEnabled {
		t.Error("orbit must be enabled in perspective")
	}
	if st.FOV != DefaultFOV {
		t.Errorf("fov = %v, want %v", st.FOV, DefaultFOV)
	}
	if want := math32.Vec3(5, 2.5, 2.5); st.Target != want {
		t.Errorf("target = %v, want container center %v", st.Target, want)
	}

	// Above and in front of the container.
	if st.Position.Y <= testContainer.Height || st.Position.Z <= testContainer.Depth {
		t.Errorf("position = %v, want above and in front of %vx%v",
			st.Position, testContainer.Height, testContainer.Depth)
	}
}

func TestFrameWithHoldingArea(t *testing.T) {
	c := NewController()
	without := c.Frame(testContainer, false, Perspective)
	with := c.Frame(testContainer, true, Perspective)

	// The target shifts along +X to keep both regions in frame.
	if with.Target.X <= without.Target.X {
		t.Errorf("target.X with holding area = %v, want > %v", with.Target.X, without.Target.X)
	}
	if with.Position.X <= without.Position.X {
		t.Errorf("position.X with holding area = %v, want > %v", with.Position.X, without.Position.X)
	}
}

func TestFrameReactsToContainerSize(t *testing.T) {
	c := NewController()
	small := c.Frame(document.Container{Width: 2, Height: 2, Depth: 2}, false, Top)
	large := c.Frame(document.Container{Width: 40, Height: 20, Depth: 30}, false, Top)

	if large.Position.Y <= small.Position.Y {
		t.Errorf("larger container should frame from further away: %v <= %v",
			large.Position.Y, small.Position.Y)
	}
}

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ViewMode
		wantErr bool
	}{
		{"perspective", Perspective, false},
		{"top", Top, false},
		{"front", Front, false},
		{"side", Side, false},
		{"diagonal", Perspective, true},
		{"", Perspective, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseViewMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseViewMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseViewMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
