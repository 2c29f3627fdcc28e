package portal

import (
	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/models"
	"github.com/taigrr/portals/pkg/render"
)

// Traveller is anything that can pass through a portal.
type Traveller interface {
	// Pose returns the current world pose.
	Pose() math3d.Pose

	// Teleport moves the traveller to target, which already carries the new
	// scale. from and to are the poses of the portal entered and the portal
	// exited.
	Teleport(from, to, target math3d.Pose)

	// Graphics returns the meshes drawn for the traveller.
	Graphics() *Graphics
}

// Graphics is the visible part of a traveller: its mesh and, while it is in
// a portal threshold, a clone drawn on the other side of the portal. Both
// carry slice planes so the part that has passed through is cut away.
type Graphics struct {
	Mesh   *models.Mesh
	Colour render.Color

	// Clone is non-nil while the traveller is in a threshold.
	Clone     *models.Mesh
	ClonePose math3d.Pose
}

// NewGraphics wraps mesh for drawing in colour.
func NewGraphics(mesh *models.Mesh, colour render.Color) *Graphics {
	return &Graphics{Mesh: mesh, Colour: colour}
}

// EnterThreshold creates the clone.
func (g *Graphics) EnterThreshold() {
	if g.Clone == nil && g.Mesh != nil {
		g.Clone = g.Mesh.Clone()
	}
}

// ExitThreshold releases the clone and stops slicing the mesh.
func (g *Graphics) ExitThreshold() {
	g.Clone = nil
	if g.Mesh != nil {
		g.Mesh.ClearSlice()
	}
}

// InThreshold reports whether the clone exists.
func (g *Graphics) InThreshold() bool {
	return g.Clone != nil
}

// SetSlice sets the cutting planes of the mesh and the clone.
func (g *Graphics) SetSlice(centre, normal, cloneCentre, cloneNormal math3d.Vec3) {
	if g.Mesh != nil {
		g.Mesh.SetSlice(centre, normal)
	}
	if g.Clone != nil {
		g.Clone.SetSlice(cloneCentre, cloneNormal)
	}
}

// SetSliceOffsetDst moves the cutting plane of the clone, or of the mesh,
// along its normal.
func (g *Graphics) SetSliceOffsetDst(dst float64, clone bool) {
	switch {
	case clone && g.Clone != nil:
		g.Clone.SetSliceOffsetDst(dst)
	case !clone && g.Mesh != nil:
		g.Mesh.SetSliceOffsetDst(dst)
	}
}

// Body is a traveller with a velocity. Teleporting re-expresses the velocity
// in the exit portal's frame and scales it with the traveller.
type Body struct {
	Name      string
	Velocity  math3d.Vec3
	MoveSpeed float64

	pose     math3d.Pose
	graphics *Graphics
}

// NewBody creates a body at pose.
func NewBody(name string, pose math3d.Pose, g *Graphics) *Body {
	return &Body{Name: name, MoveSpeed: 1, pose: pose, graphics: g}
}

func (b *Body) Pose() math3d.Pose {
	return b.pose
}

// SetPose moves the body without touching its velocity.
func (b *Body) SetPose(p math3d.Pose) {
	b.pose = p
}

func (b *Body) Graphics() *Graphics {
	return b.graphics
}

func (b *Body) Teleport(from, to, target math3d.Pose) {
	factor := ratio(target.UniformScale(), b.pose.UniformScale())

	local := math3d.Rotate(from.Rotation.Inverse(), b.Velocity)
	b.Velocity = math3d.Rotate(to.Rotation, local).Scale(factor)
	b.MoveSpeed *= factor
	b.pose = target
}

// Bounce sets the vertical velocity, for launchers and jumps.
func (b *Body) Bounce(speed float64) {
	b.Velocity.Y = speed
}

func (b *Body) String() string {
	return b.Name
}
