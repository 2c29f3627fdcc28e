package portal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/render"
)

// readyPair links and initializes two portals for player.
func readyPair(t *testing.T, a, b *Portal, player *render.Camera, r Renderer) {
	t.Helper()
	require.NoError(t, Link(a, b))
	require.NoError(t, a.Init(player, r))
	require.NoError(t, b.Init(player, r))
}

func TestInitWithoutLinkIsInert(t *testing.T) {
	p := newTestPortal("lonely", poseAt(0, 0, 0))
	r := newCountingRenderer()

	err := p.Init(playerAt(0, 0, 5), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLinkedPortal)

	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "lonely", cerr.Surface)
	assert.False(t, p.Ready())
	assert.Equal(t, err, p.Err())

	// Every per-frame call is a no-op.
	body := newTestBody("cube", poseAt(0, 0, 1))
	p.OnTriggerEnter(body)
	body.SetPose(poseAt(0, 0, -1))
	p.HandleTravellers()
	p.PreRender()
	p.Render(nil)
	p.PostRender()
	assert.Zero(t, p.Stats())
	assert.Zero(t, r.draws())
}

func TestInitReportsMissingPieces(t *testing.T) {
	player := playerAt(0, 0, 5)
	r := newCountingRenderer()

	tests := []struct {
		name    string
		setup   func(a, b *Portal)
		player  *render.Camera
		r       Renderer
		wantErr error
	}{
		{"no screen", func(a, b *Portal) { a.Screen = nil }, player, r, ErrNoScreen},
		{"no linked screen", func(a, b *Portal) { b.Screen = nil }, player, r, ErrNoScreen},
		{"no camera", func(a, b *Portal) {}, nil, r, ErrNoCamera},
		{"no renderer", func(a, b *Portal) {}, player, nil, ErrNoRenderer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestPortal("a", poseAt(0, 0, 0))
			b := newTestPortal("b", poseAt(5, 0, 0))
			require.NoError(t, Link(a, b))
			tc.setup(a, b)

			err := a.Init(tc.player, tc.r)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.False(t, a.Ready())
		})
	}
}

func TestInitSucceeds(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(5, 0, 0))
	a.Settings.RecursionLimit = 0
	readyPair(t, a, b, playerAt(0, 0, 5), newCountingRenderer())

	assert.True(t, a.Ready())
	assert.NoError(t, a.Err())
	assert.Equal(t, 1, a.Settings.RecursionLimit, "limit clamped to 1")
	assert.Same(t, a.View(), b.Screen.View, "a's view is shown on b's screen")
	assert.Same(t, b.View(), a.Screen.View)
	assert.Greater(t, a.Screen.Depth(), minScreenDepth)
}

func TestTravelThroughScaledPair(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	bPose := poseAt(10, 0, 0)
	bPose.Scale = math3d.V3(0.5, 0.5, 0.5)
	b := newTestPortal("b", bPose)
	ctx := NewScaleContext(a, b)
	a.Scale, b.Scale = ctx, ctx
	readyPair(t, a, b, playerAt(0, 0, 20), newCountingRenderer())

	var teleports []string
	a.Observer = ObserverFunc(func(from, to *Portal, _ Traveller) {
		teleports = append(teleports, from.Name+"->"+to.Name)
	})

	body := newTestBody("cube", poseAt(0, 0, 1))
	a.OnTriggerEnter(body)
	require.Equal(t, -1, a.Travellers().PreviousSide(body))

	// Cross a's plane.
	start := poseAt(0, 0, -0.5)
	body.SetPose(start)
	a.HandleTravellers()

	want := Bridge(a.Pose, b.Pose, start)
	assert.InDelta(t, 0.5, body.Pose().UniformScale(), 1e-9)
	assert.True(t, vecNear(want.Position, body.Pose().Position), "got %v, want %v", body.Pose().Position, want.Position)
	assert.True(t, vecNear(math3d.V3(10, 0, -0.25), body.Pose().Position))
	assert.Equal(t, []string{"a->b"}, teleports)
	assert.Equal(t, 1, a.Stats().Teleports)

	// The traveller now belongs to b and keeps its clone.
	assert.False(t, a.Travellers().Contains(body))
	require.True(t, b.Travellers().Contains(body))
	assert.Equal(t, 1, b.Travellers().PreviousSide(body))
	assert.True(t, body.Graphics().InThreshold())
	assert.Equal(t, start, body.Graphics().ClonePose)

	// No second teleport without another crossing.
	b.HandleTravellers()
	a.HandleTravellers()
	assert.Zero(t, b.Stats().Teleports)

	// Cross back.
	body.SetPose(math3d.Pose{
		Position: math3d.V3(10, 0, 0.25),
		Rotation: math3d.QuatIdent(),
		Scale:    math3d.V3(0.5, 0.5, 0.5),
	})
	b.HandleTravellers()
	assert.Equal(t, 1, b.Stats().Teleports)
	assert.InDelta(t, 1, body.Pose().UniformScale(), 1e-9)
	assert.True(t, vecNear(math3d.V3(0, 0, 0.5), body.Pose().Position), "got %v", body.Pose().Position)
	assert.True(t, a.Travellers().Contains(body))
}

func TestEnterAndLeaveWithoutCrossing(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(10, 0, 0))
	readyPair(t, a, b, playerAt(0, 0, 20), newCountingRenderer())

	body := newTestBody("cube", poseAt(-1, 0, 2))
	a.OnTriggerEnter(body)
	require.True(t, body.Graphics().InThreshold())

	for _, z := range []float64{1.5, 1, 0.5, 1, 2} {
		body.SetPose(poseAt(-1, 0, z))
		a.HandleTravellers()

		// The clone stands at the matching spot behind b.
		clone := body.Graphics().ClonePose.Position
		assert.True(t, vecNear(math3d.V3(9, 0, z), clone), "clone at %v", clone)
	}

	a.OnTriggerExit(body)
	assert.Zero(t, a.Stats().Teleports)
	assert.Zero(t, a.Travellers().Len())
	assert.False(t, body.Graphics().InThreshold())
}

func TestTriggerEnterTwiceKeepsTracking(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(10, 0, 0))
	readyPair(t, a, b, playerAt(0, 0, 20), newCountingRenderer())

	body := newTestBody("cube", poseAt(0, 0, 1))
	a.OnTriggerEnter(body)
	clone := body.Graphics().Clone

	a.OnTriggerEnter(body)
	assert.Equal(t, 1, a.Travellers().Len())
	assert.Equal(t, -1, a.Travellers().PreviousSide(body))
	assert.Same(t, clone, body.Graphics().Clone)

	a.HandleTravellers()
	assert.Zero(t, a.Stats().Teleports)
}

// The linked sensor only reports the arrival on the frame after a teleport.
// A traveller that steps back across the plane in that frame must still be
// sent home.
func TestCrossingBeforeLateTriggerEnterTeleports(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(10, 0, 0))
	readyPair(t, a, b, playerAt(0, 0, 20), newCountingRenderer())

	body := newTestBody("cube", poseAt(0, 0, 1))
	a.OnTriggerEnter(body)
	body.SetPose(poseAt(0, 0, -0.5))
	a.HandleTravellers()
	require.Equal(t, 1, a.Stats().Teleports)
	require.Equal(t, 1, b.Travellers().PreviousSide(body))

	body.SetPose(math3d.Pose{
		Position: math3d.V3(10, 0, 0.05),
		Rotation: math3d.QuatIdent(),
		Scale:    math3d.V3(0.5, 0.5, 0.5),
	})
	b.OnTriggerEnter(body)
	assert.Equal(t, 1, b.Travellers().PreviousSide(body), "side kept")

	b.HandleTravellers()
	assert.Equal(t, 1, b.Stats().Teleports)
	assert.True(t, a.Travellers().Contains(body))
	assert.False(t, vecNear(math3d.V3(10, 0, 0.05), body.Pose().Position))
}

// corridor sets up a player at z=10 looking at b (z=0) with a at z=5, so
// every pass through the pair moves the virtual camera 5 units back and b
// keeps showing through a: the chain only ends at the recursion limit.
func corridor(t *testing.T, limit int) (a, b *Portal, player *render.Camera, r *countingRenderer) {
	a = newTestPortal("a", poseAt(0, 0, 5))
	b = newTestPortal("b", poseAt(0, 0, 0))
	a.Settings.RecursionLimit = limit
	b.Settings.RecursionLimit = limit
	player = playerAt(0, 0, 10)
	r = newCountingRenderer()
	readyPair(t, a, b, player, r)
	return a, b, player, r
}

func TestRecursionBoundedByLimit(t *testing.T) {
	for _, limit := range []int{1, 3, 5} {
		a, _, player, r := corridor(t, limit)
		a.PreRender()
		a.Render(player)
		a.PostRender()

		assert.Equal(t, limit, r.draws(), "limit %d", limit)
		assert.Equal(t, limit, a.Stats().Draws)
		assert.Equal(t, 1, a.Stats().Truncations)
	}
}

func TestRecursionDrawsInnermostFirst(t *testing.T) {
	a, b, player, r := corridor(t, 3)

	var shadows, masks []bool
	r.onRender = func(*render.Camera) {
		shadows = append(shadows, a.Screen.ShadowsOnly)
		masks = append(masks, b.Screen.DisplayMask)
	}

	a.PreRender()
	a.Render(player)
	a.PostRender()

	require.Len(t, r.positions, 3)
	for i, z := range []float64{25, 20, 15} {
		assert.InDelta(t, z, r.positions[i].Z, 1e-9, "draw %d", i)
	}
	assert.Equal(t, []bool{true, true, true}, shadows)
	assert.Equal(t, []bool{false, true, true}, masks)

	assert.False(t, a.Screen.ShadowsOnly)
	assert.True(t, b.Screen.DisplayMask)
	assert.Equal(t, 1, a.View().Recreations)
}

func TestRecursionStopsWhenPartnerNotSeen(t *testing.T) {
	_, b, player, r := corridor(t, 3)

	// From a's position, a's screen is at the camera and cannot be seen
	// through b's.
	b.Render(player)
	assert.Equal(t, 1, r.draws())
	assert.Zero(t, b.Stats().Truncations)
}

func TestRenderSkippedWhenPartnerOutOfView(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(0, 0, 30)) // behind the player
	a.Settings.RecursionLimit = 3
	player := playerAt(0, 0, 10)
	r := newCountingRenderer()
	readyPair(t, a, b, player, r)

	a.PreRender()
	a.Render(player)
	a.PostRender()

	assert.Zero(t, r.draws())
	assert.Equal(t, 1, a.Stats().VisibilitySkips)
	w, h := a.View().Size()
	assert.Zero(t, w+h, "no view surface without a draw")
}

func TestRenderSkippedWhenPartnerDisabled(t *testing.T) {
	a, b, player, r := corridor(t, 3)
	b.Screen.Enabled = false

	a.Render(player)
	assert.Zero(t, r.draws())
	assert.Equal(t, 1, a.Stats().VisibilitySkips)
}

func TestVirtualCameraUsesObliqueNearPlane(t *testing.T) {
	a, _, player, _ := corridor(t, 1)
	a.Render(player)
	assert.True(t, a.Camera().HasCustomProjection())
}

func TestVirtualCameraCompensatesScale(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	a.Pose.Scale = math3d.V3(2, 2, 2)
	b := newTestPortal("b", poseAt(0, 0, -10))
	a.Settings.RecursionLimit = 1
	player := playerAt(0, 0, 5)
	readyPair(t, a, b, player, newCountingRenderer())

	a.Render(player)
	assert.InDelta(t, CompensatedFOV(player.FOV, 2, 1), a.Camera().FOV, 1e-9)
	assert.Equal(t, player.AspectRatio, a.Camera().AspectRatio)
}

func TestViewSurfaceKeptAcrossFrames(t *testing.T) {
	a, _, player, r := corridor(t, 1)
	for range 3 {
		a.Render(player)
	}
	assert.Equal(t, 1, a.View().Recreations)

	r.width, r.height = 64, 36
	a.Render(player)
	assert.Equal(t, 2, a.View().Recreations)
	w, h := a.View().Size()
	assert.Equal(t, []int{64, 36}, []int{w, h})
}

func TestSliceParamsFollowSide(t *testing.T) {
	a := newTestPortal("a", poseAt(0, 0, 0))
	b := newTestPortal("b", poseAt(10, 0, 0))
	readyPair(t, a, b, playerAt(0, 0, 20), newCountingRenderer())

	body := newTestBody("cube", poseAt(0, 0, 1)) // behind a
	a.OnTriggerEnter(body)
	a.PreRender()

	g := body.Graphics()
	assert.Equal(t, a.Pose.Forward(), g.Mesh.Slice.Normal, "cut away what has passed through")
	assert.Equal(t, b.Pose.Position, g.Clone.Slice.Centre)
	assert.Equal(t, b.Pose.Forward().Negate(), g.Clone.Slice.Normal)
	assert.False(t, b.Screen.DisplayMask)

	a.PostRender()
	assert.True(t, b.Screen.DisplayMask)
	assert.Zero(t, g.Mesh.Slice.OffsetDst)
	assert.Zero(t, g.Clone.Slice.OffsetDst)
}

func TestProtectScreenFacesAwayFromViewer(t *testing.T) {
	a, _, _, _ := corridor(t, 1)

	depth := a.ProtectScreenFromClipping(math3d.V3(0, 0, 10))
	assert.Equal(t, depth, a.Screen.Depth())
	assert.InDelta(t, depth/2, a.Screen.Offset(), 1e-12, "pushed along forward, away from a viewer in front")

	a.ProtectScreenFromClipping(math3d.V3(0, 0, 0))
	assert.InDelta(t, -depth/2, a.Screen.Offset(), 1e-12)
}
