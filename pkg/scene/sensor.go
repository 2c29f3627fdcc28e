package scene

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

// Sensor is the trigger volume of a portal: a box around the screen in the
// portal's local space, reaching Depth in front of and behind it. Step
// reports travellers entering and leaving to the portal.
type Sensor struct {
	Portal *portal.Portal
	Depth  float64

	inside map[portal.Traveller]bool
}

// NewSensor creates a sensor for p.
func NewSensor(p *portal.Portal, depth float64) *Sensor {
	return &Sensor{
		Portal: p,
		Depth:  depth,
		inside: make(map[portal.Traveller]bool),
	}
}

// HalfExtents is the half size of the box in portal-local units.
func (s *Sensor) HalfExtents() math3d.Vec3 {
	scr := s.Portal.Screen
	return math3d.V3(scr.Width/2, scr.Height/2, s.Depth)
}

// Bounds returns the placed trigger box.
func (s *Sensor) Bounds() render.Bounds {
	h := s.HalfExtents()
	return render.Bounds{
		Local:     render.AABB{Min: h.Negate(), Max: h},
		Transform: s.Portal.Pose.Matrix(),
	}
}

// Contains reports whether the world point p is inside the box.
func (s *Sensor) Contains(p math3d.Vec3) bool {
	local := s.Portal.Pose.InverseTransformPoint(p)
	h := s.HalfExtents()
	return math.Abs(local.X) <= h.X && math.Abs(local.Y) <= h.Y && math.Abs(local.Z) <= h.Z
}

// Active reports whether the sensor detects anything. A portal that failed
// to initialize or whose screen is switched off detects nothing.
func (s *Sensor) Active() bool {
	scr := s.Portal.Screen
	return s.Portal.Ready() && scr != nil && scr.Enabled
}

// Inside reports whether t was inside at the last Step.
func (s *Sensor) Inside(t portal.Traveller) bool {
	return s.inside[t]
}

// Step tests every traveller and calls OnTriggerEnter and OnTriggerExit on
// the portal for membership changes.
func (s *Sensor) Step(travellers []portal.Traveller) {
	active := s.Active()
	for _, t := range travellers {
		in := active && s.Contains(centreOf(t))
		switch was := s.inside[t]; {
		case in && !was:
			s.inside[t] = true
			s.Portal.OnTriggerEnter(t)
		case !in && was:
			delete(s.inside, t)
			s.Portal.OnTriggerExit(t)
		}
	}
}

// centreOf is the middle of a traveller's mesh, or its position.
func centreOf(t portal.Traveller) math3d.Vec3 {
	pose := t.Pose()
	if g := t.Graphics(); g != nil && g.Mesh != nil {
		return pose.TransformPoint(g.Mesh.Center())
	}
	return pose.Position
}
