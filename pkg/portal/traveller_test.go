package portal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/portals/pkg/math3d"
)

func TestGraphicsThreshold(t *testing.T) {
	b := newTestBody("cube", poseAt(0, 0, 0))
	g := b.Graphics()
	require.False(t, g.InThreshold())

	g.EnterThreshold()
	require.True(t, g.InThreshold())
	assert.NotSame(t, g.Mesh, g.Clone)

	clone := g.Clone
	g.EnterThreshold()
	assert.Same(t, clone, g.Clone, "entering twice keeps the clone")

	g.SetSlice(math3d.Zero3(), math3d.V3(0, 0, 1), math3d.V3(5, 0, 0), math3d.V3(0, 0, -1))
	assert.Equal(t, math3d.V3(0, 0, 1), g.Mesh.Slice.Normal)
	assert.Equal(t, math3d.V3(5, 0, 0), g.Clone.Slice.Centre)
	assert.Equal(t, math3d.V3(0, 0, -1), g.Clone.Materials[0].Slice.Normal)

	g.ExitThreshold()
	assert.False(t, g.InThreshold())
	assert.Equal(t, math3d.Vec3{}, g.Mesh.Slice.Normal)
}

func TestSliceOffsetTargetsOneMesh(t *testing.T) {
	g := newTestBody("cube", poseAt(0, 0, 0)).Graphics()
	g.EnterThreshold()
	g.SetSlice(math3d.Zero3(), math3d.V3(0, 0, 1), math3d.Zero3(), math3d.V3(0, 0, -1))

	g.SetSliceOffsetDst(0.3, true)
	assert.Equal(t, 0.3, g.Clone.Slice.OffsetDst)
	assert.Zero(t, g.Mesh.Slice.OffsetDst)

	g.SetSliceOffsetDst(-0.1, false)
	assert.Equal(t, -0.1, g.Mesh.Slice.OffsetDst)
}

func TestBodyTeleport(t *testing.T) {
	b := newTestBody("ball", poseAt(0, 0, 0))
	b.Velocity = math3d.V3(0, 0, -2)
	b.MoveSpeed = 4

	from := poseAt(0, 0, 0)
	to := math3d.NewPose(math3d.V3(10, 0, 0), math3d.QuatAxisAngle(math3d.Up(), math.Pi))
	target := to
	target.Scale = math3d.V3(0.5, 0.5, 0.5)

	b.Teleport(from, to, target)

	assert.Equal(t, target, b.Pose())
	assert.True(t, vecNear(b.Velocity, math3d.V3(0, 0, 1)), "velocity %v", b.Velocity)
	assert.InDelta(t, 2, b.MoveSpeed, 1e-12)
}

func TestBodyBounce(t *testing.T) {
	b := newTestBody("ball", poseAt(0, 0, 0))
	b.Velocity = math3d.V3(1, -3, 0)
	b.Bounce(5)
	assert.Equal(t, math3d.V3(1, 5, 0), b.Velocity)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := newTestBody("a", poseAt(0, 0, 0))
	b := newTestBody("b", poseAt(0, 0, 0))

	assert.Equal(t, Untracked, r.State(a))
	assert.True(t, r.Add(a, -1))
	assert.False(t, r.Add(a, 1), "duplicate add")
	assert.Equal(t, -1, r.PreviousSide(a))
	assert.Equal(t, InThreshold, r.State(a))

	r.Add(b, 1)
	r.SetPreviousSide(a, 1)
	assert.Equal(t, 1, r.PreviousSide(a))
	assert.Equal(t, 2, r.Len())

	snapshot := r.Travellers()
	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	assert.Len(t, snapshot, 2, "snapshot is unaffected by removal")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "in-threshold", InThreshold.String())
}

func TestScaleContext(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	bPose := poseAt(10, 0, 0)
	bPose.Scale = math3d.V3(0.5, 0.5, 0.5)
	b := newTestPortal("b", bPose)
	c := newTestPortal("c", poseAt(20, 0, 0))

	s := NewScaleContext(a, b)
	assert.InDelta(t, 0.5, s.ShrinkFactor(), 1e-12)
	assert.InDelta(t, 2, s.GrowthFactor(), 1e-12)
	assert.InDelta(t, 1, s.ShrinkFactor()*s.GrowthFactor(), 1e-12)
	assert.Equal(t, s.ShrinkFactor(), s.Factor(a, b))
	assert.Equal(t, s.GrowthFactor(), s.Factor(b, a))
	assert.InDelta(t, 2, s.Factor(b, c), 1e-12)

	var none *ScaleContext
	assert.Equal(t, 1.0, none.ShrinkFactor())
	assert.InDelta(t, 0.5, none.Factor(a, b), 1e-12)

	assert.True(t, s.IsShrunk(0.5))
	assert.False(t, s.IsShrunk(1))
}
