package scene

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/models"
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

// maxPitch keeps the player from looking past straight up or down.
const maxPitch = math.Pi/2 - 0.01

// Input is one frame of player controls. Forward and Strafe are in [-1, 1];
// Yaw and Pitch are look deltas in radians.
type Input struct {
	Forward, Strafe float64
	Yaw, Pitch      float64
	Jump            bool
}

// Player is the traveller that carries the camera. Its pose is at the feet
// and only ever yaws; pitch is applied to the camera alone.
type Player struct {
	*portal.Body

	Camera    *render.Camera
	Yaw       float64
	Pitch     float64
	EyeHeight float64
	JumpSpeed float64

	control  bool
	grounded bool
}

// NewPlayer creates a player standing at pos facing yaw.
func NewPlayer(pos math3d.Vec3, yaw float64, cfg PlayerConfig, cam *render.Camera) *Player {
	mesh := models.NewBox("player", math3d.V3(0.6, cfg.EyeHeight+0.2, 0.6))
	mesh.Transform(math3d.Translate(math3d.V3(0, (cfg.EyeHeight+0.2)/2, 0)))

	body := portal.NewBody("player", math3d.NewPose(pos, math3d.QuatFromEuler(0, yaw, 0)),
		portal.NewGraphics(mesh, cfg.Colour.RGB()))
	body.MoveSpeed = cfg.Speed

	p := &Player{
		Body:      body,
		Camera:    cam,
		Yaw:       yaw,
		EyeHeight: cfg.EyeHeight,
		JumpSpeed: cfg.Jump,
		control:   true,
	}
	p.syncCamera()
	return p
}

// Eye is the camera position: EyeHeight above the feet, scaled with the
// player.
func (p *Player) Eye() math3d.Vec3 {
	pose := p.Pose()
	return pose.Position.Add(pose.Up().Scale(p.EyeHeight * pose.UniformScale()))
}

// SetPose moves the player and its camera.
func (p *Player) SetPose(pose math3d.Pose) {
	p.Body.SetPose(pose)
	p.syncCamera()
}

// Teleport moves the player through a portal. The new pose is levelled so
// the player stays upright whatever the portals' tilt.
func (p *Player) Teleport(from, to, target math3d.Pose) {
	p.Body.Teleport(from, to, target)
	p.Yaw = math3d.Yaw(target.Rotation)
	pose := p.Pose()
	pose.Rotation = math3d.QuatFromEuler(0, p.Yaw, 0)
	p.SetPose(pose)
}

// SetControl enables or disables input.
func (p *Player) SetControl(enabled bool) {
	p.control = enabled
}

// InControl reports whether input moves the player.
func (p *Player) InControl() bool {
	return p.control
}

// ResetYawAndPitch takes the look angles from the current pose.
func (p *Player) ResetYawAndPitch() {
	p.Yaw = math3d.Yaw(p.Pose().Rotation)
	p.Pitch = 0
	p.syncCamera()
}

// Grounded reports whether the player stood on the floor after the last Step.
func (p *Player) Grounded() bool {
	return p.grounded
}

// Step applies in for dt seconds, then gravity and the floor. Nothing
// happens while control is disabled; a transition is moving the player.
func (p *Player) Step(dt float64, in Input, floor, gravity float64) {
	if !p.control {
		return
	}
	pose := p.Pose()
	scale := pose.UniformScale()

	p.Yaw += in.Yaw
	p.Pitch = math.Max(-maxPitch, math.Min(maxPitch, p.Pitch+in.Pitch))
	pose.Rotation = math3d.QuatFromEuler(0, p.Yaw, 0)

	sin, cos := math.Sincos(p.Yaw)
	fwd := math3d.V3(-sin, 0, -cos)
	right := math3d.V3(cos, 0, -sin)
	move := fwd.Scale(in.Forward).Add(right.Scale(in.Strafe))
	if l := move.Len(); l > 1 {
		move = move.Scale(1 / l)
	}
	pose.Position = pose.Position.Add(move.Scale(p.MoveSpeed * dt))

	if in.Jump && p.grounded {
		p.Bounce(p.JumpSpeed * scale)
	}
	p.Velocity.Y -= gravity * scale * dt
	pose.Position = pose.Position.Add(p.Velocity.Scale(dt))

	p.grounded = pose.Position.Y <= floor
	if p.grounded {
		pose.Position.Y = floor
		p.Velocity = math3d.Zero3()
	}
	p.SetPose(pose)
}

func (p *Player) syncCamera() {
	if p.Camera == nil {
		return
	}
	rot := p.Pose().Rotation.Mul(math3d.QuatAxisAngle(math3d.Right(), p.Pitch))
	p.Camera.SetPose(p.Eye(), rot)
}

// Prop is a traveller box that slides with its velocity and rests on the
// floor.
type Prop struct {
	*portal.Body
}

// Step integrates the prop for dt seconds.
func (p *Prop) Step(dt, floor, gravity float64) {
	pose := p.Pose()
	scale := pose.UniformScale()

	p.Velocity.Y -= gravity * scale * dt
	pose.Position = pose.Position.Add(p.Velocity.Scale(dt))

	if bottom := p.bottom(pose); bottom < floor {
		pose.Position.Y += floor - bottom
		p.Velocity.Y = 0
	}
	p.SetPose(pose)
}

// bottom is the lowest point of the prop's mesh at pose.
func (p *Prop) bottom(pose math3d.Pose) float64 {
	g := p.Graphics()
	if g == nil || g.Mesh == nil {
		return pose.Position.Y
	}
	lo, _ := g.Mesh.GetBounds()
	return pose.Position.Y + lo.Y*pose.Scale.Y
}
