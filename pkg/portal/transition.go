package portal

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/taigrr/portals/pkg/math3d"
)

// Mover is the player as driven by a staged transition.
type Mover interface {
	Pose() math3d.Pose
	SetPose(math3d.Pose)

	// Eye is the viewpoint used for detection volumes.
	Eye() math3d.Vec3

	// SetControl enables or disables player input.
	SetControl(enabled bool)

	// ResetYawAndPitch re-derives look angles from the current pose.
	ResetYawAndPitch()
}

// Stage is the step a Transition is in.
type Stage int

const (
	StageIdle       Stage = iota
	StageRendezvous       // moving and turning to face the painting
	StagePush             // pushing toward the portal
	StageSettling         // done moving; waiting for the player to leave
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageRendezvous:
		return "rendezvous"
	case StagePush:
		return "push"
	case StageSettling:
		return "settling"
	}
	return "unknown"
}

// Transition moves a Mover in timed stages, advanced by Step once per frame.
// Input is disabled from Start until the push completes.
type Transition struct {
	stage Stage
	mover Mover
	tween *gween.Tween

	startPos      math3d.Vec3
	startRot      math3d.Quat
	rendezvousPos math3d.Vec3
	rendezvousRot math3d.Quat
	pushPos       math3d.Vec3
	pushDuration  time.Duration
	progress      float64
}

// Start begins moving m to rendezvous over duration, then to push over
// pushDuration.
func (t *Transition) Start(m Mover, rendezvous math3d.Pose, push math3d.Vec3, duration, pushDuration time.Duration) {
	pose := m.Pose()
	t.mover = m
	t.startPos = pose.Position
	t.startRot = pose.Rotation
	t.rendezvousPos = rendezvous.Position
	t.rendezvousRot = rendezvous.Rotation
	t.pushPos = push
	t.pushDuration = pushDuration
	t.progress = 0

	t.stage = StageRendezvous
	t.tween = gween.New(0, 1, float32(duration.Seconds()), ease.Linear)
	m.SetControl(false)
}

// Step advances the transition by dt seconds.
func (t *Transition) Step(dt float64) {
	switch t.stage {
	case StageRendezvous:
		v, done := t.tween.Update(float32(dt))
		t.progress = float64(v)
		if done {
			t.move(t.rendezvousPos, t.rendezvousRot)
			t.stage = StagePush
			t.progress = 0
			t.tween = gween.New(0, 1, float32(t.pushDuration.Seconds()), ease.Linear)
			return
		}
		t.move(
			t.startPos.Lerp(t.rendezvousPos, t.progress),
			math3d.Slerp(t.startRot, t.rendezvousRot, t.progress),
		)

	case StagePush:
		v, done := t.tween.Update(float32(dt))
		t.progress = float64(v)
		if done {
			t.move(t.pushPos, t.rendezvousRot)
			t.mover.ResetYawAndPitch()
			t.mover.SetControl(true)
			t.stage = StageSettling
			return
		}
		t.move(t.rendezvousPos.Lerp(t.pushPos, t.progress), t.rendezvousRot)
	}
}

// Settle ends a transition waiting in StageSettling.
func (t *Transition) Settle() {
	if t.stage == StageSettling {
		t.stage = StageIdle
		t.mover = nil
	}
}

// Stage returns the current stage.
func (t *Transition) Stage() Stage {
	return t.stage
}

// Active reports whether a transition is under way, including settling.
func (t *Transition) Active() bool {
	return t.stage != StageIdle
}

// Progress is the fraction of the current stage completed, in [0, 1].
func (t *Transition) Progress() float64 {
	return t.progress
}

func (t *Transition) move(pos math3d.Vec3, rot math3d.Quat) {
	pose := t.mover.Pose()
	pose.Position = pos
	pose.Rotation = rot
	t.mover.SetPose(pose)
}
