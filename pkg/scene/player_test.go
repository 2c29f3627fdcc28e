package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

func newTestPlayer() *Player {
	cfg := PlayerConfig{EyeHeight: 1.6, Speed: 4, Jump: 5, Colour: Colour{255, 255, 255}}
	return NewPlayer(math3d.Zero3(), 0, cfg, render.NewCamera())
}

func vecNear(t *testing.T, want, got math3d.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, 0, want.Sub(got).Len(), 1e-9, msgAndArgs...)
}

func TestPlayerWalks(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want math3d.Vec3
	}{
		{"forward", Input{Forward: 1}, math3d.V3(0, 0, -2)},
		{"back", Input{Forward: -1}, math3d.V3(0, 0, 2)},
		{"strafe right", Input{Strafe: 1}, math3d.V3(2, 0, 0)},
		{"diagonal is not faster", Input{Forward: 1, Strafe: 1}, math3d.V3(math.Sqrt2, 0, -math.Sqrt2)},
		{"turn left then walk", Input{Yaw: math.Pi / 2, Forward: 1}, math3d.V3(-2, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPlayer()
			p.Step(0.5, tc.in, 0, 9.8)
			vecNear(t, tc.want, p.Pose().Position)
			assert.True(t, p.Grounded())
		})
	}
}

func TestPlayerCameraFollows(t *testing.T) {
	p := newTestPlayer()
	p.Step(0.1, Input{Yaw: 0.3, Pitch: 0.2}, 0, 9.8)

	assert.Equal(t, p.Eye(), p.Camera.Position)
	assert.InDelta(t, 1.6, p.Eye().Y, 1e-12)

	want := math3d.QuatFromEuler(0.2, 0.3, 0)
	assert.InDelta(t, 0, math3d.QuatAngle(want, p.Camera.Rotation), 1e-9)
	assert.InDelta(t, 0.3, math3d.Yaw(p.Pose().Rotation), 1e-9, "body only yaws")
}

func TestPlayerPitchIsClamped(t *testing.T) {
	p := newTestPlayer()
	p.Step(0.1, Input{Pitch: 10}, 0, 9.8)
	assert.Equal(t, maxPitch, p.Pitch)

	p.Step(0.1, Input{Pitch: -20}, 0, 9.8)
	assert.Equal(t, -maxPitch, p.Pitch)
}

func TestPlayerJumps(t *testing.T) {
	p := newTestPlayer()
	p.Step(0.1, Input{Jump: true}, 0, 9.8)
	assert.True(t, p.Grounded(), "cannot jump before landing")

	p.Step(0.1, Input{Jump: true}, 0, 9.8)
	assert.False(t, p.Grounded())
	assert.Greater(t, p.Pose().Position.Y, 0.0)
	assert.InDelta(t, 5-0.98, p.Velocity.Y, 1e-9)

	for range 50 {
		p.Step(0.1, Input{}, 0, 9.8)
	}
	assert.True(t, p.Grounded())
	assert.Zero(t, p.Pose().Position.Y)
}

func TestPlayerWithoutControlIgnoresInput(t *testing.T) {
	p := newTestPlayer()
	p.SetControl(false)
	p.Step(1, Input{Forward: 1, Yaw: 1}, 0, 9.8)

	assert.False(t, p.InControl())
	assert.Equal(t, math3d.Zero3(), p.Pose().Position)
	assert.Zero(t, p.Yaw)
}

func TestPlayerTeleportLevels(t *testing.T) {
	p := newTestPlayer()
	target := math3d.NewPose(math3d.V3(5, 0, 5), math3d.QuatFromEuler(0.4, 1, 0.2))
	target.Scale = math3d.V3(2, 2, 2)

	p.Teleport(math3d.IdentityPose(), math3d.IdentityPose(), target)

	pose := p.Pose()
	assert.InDelta(t, 1, p.Yaw, 1e-9)
	vecNear(t, math3d.Up(), pose.Up(), "upright after teleport")
	assert.InDelta(t, 8, p.MoveSpeed, 1e-12)
	vecNear(t, math3d.V3(5, 3.2, 5), p.Eye(), "eye height scales")
	assert.Equal(t, p.Eye(), p.Camera.Position)
}

func TestPlayerResetYawAndPitch(t *testing.T) {
	p := newTestPlayer()
	p.Pitch = 0.5
	p.SetPose(math3d.NewPose(math3d.Zero3(), math3d.QuatFromEuler(0, -2, 0)))

	p.ResetYawAndPitch()
	assert.InDelta(t, -2, p.Yaw, 1e-9)
	assert.Zero(t, p.Pitch)
	assert.InDelta(t, 0, math3d.QuatAngle(p.Pose().Rotation, p.Camera.Rotation), 1e-9)
}

func TestPlayerIsMover(t *testing.T) {
	var _ portal.Mover = newTestPlayer()
	var _ portal.Traveller = newTestPlayer()
}

func TestPropFallsAndSlides(t *testing.T) {
	cube := newCube("cube", math3d.V3(0, 3, 0))
	cube.Velocity = math3d.V3(1, 0, 0)
	prop := &Prop{Body: cube}

	for range 20 {
		prop.Step(0.1, 0, 9.8)
	}

	pos := prop.Pose().Position
	assert.InDelta(t, 0.25, pos.Y, 1e-9, "resting on the floor")
	assert.InDelta(t, 2, pos.X, 1e-9)
	assert.Zero(t, prop.Velocity.Y)
}
