package portal

import (
	"fmt"
	"math"

	"github.com/taigrr/portals/pkg/math3d"
)

// Mode selects which surface of a gateway is shown.
type Mode int

const (
	ModePainting Mode = iota
	ModePortal
)

func (m Mode) String() string {
	if m == ModePortal {
		return "portal"
	}
	return "painting"
}

// Role marks the gateway that drives a pair's transition.
type Role int

const (
	Leader Role = iota
	Follower
)

// Gateway is a location that is a painting until the player walks up to it
// and a portal afterwards. Its pose is the base of the frame: the screens sit
// above it and the detection volume rises from it.
type Gateway struct {
	Name     string
	Pose     math3d.Pose
	Portal   *Portal
	Painting *Painting
	Settings PairSettings
	Mode     Mode
	Role     Role

	inRange bool
}

// NewGateway creates a gateway in painting mode with default pair settings.
func NewGateway(name string, pose math3d.Pose, portal *Portal, painting *Painting) *Gateway {
	return &Gateway{
		Name:     name,
		Pose:     pose,
		Portal:   portal,
		Painting: painting,
		Settings: DefaultPairSettings(),
	}
}

// Contains reports whether p lies inside the gateway's detection volume: an
// octahedron PortalWidth wide, PortalHeight tall from the base and reaching
// ViewingDistance in front of and behind the frame.
func (g *Gateway) Contains(p math3d.Vec3) bool {
	s := g.Settings
	if s.PortalWidth <= 0 || s.PortalHeight <= 0 || s.ViewingDistance <= 0 {
		return false
	}
	local := math3d.Rotate(g.Pose.Rotation.Inverse(), p.Sub(g.Pose.Position))
	halfH := s.PortalHeight / 2
	d := math.Abs(local.X)/(s.PortalWidth/2) +
		math.Abs(local.Y-halfH)/halfH +
		math.Abs(local.Z)/s.ViewingDistance
	return d <= 1
}

// InRange reports whether the player was inside the detection volume at the
// last Pair.Update.
func (g *Gateway) InRange() bool {
	return g.inRange
}

// Near reports whether p is within PortalWidth of the gateway base.
func (g *Gateway) Near(p math3d.Vec3) bool {
	return p.Distance(g.Pose.Position) < g.Settings.PortalWidth
}

// applyMode enables exactly one of the gateway's screens.
func (g *Gateway) applyMode() {
	portal := g.Mode == ModePortal
	if g.Portal != nil && g.Portal.Screen != nil {
		g.Portal.Screen.Enabled = portal
	}
	if g.Painting != nil && g.Painting.Screen != nil {
		g.Painting.Screen.Enabled = !portal
	}
}

// Pair couples two gateways. When the player enters either detection volume
// while the pair shows paintings, the player is led to stand in front of
// that painting, both gateways switch to portals, and the player is pushed
// through.
type Pair struct {
	leader, follower *Gateway
	mover            Mover
	transition       Transition
}

// NewPair links the portals and paintings of a and b. a leads.
func NewPair(a, b *Gateway, m Mover) (*Pair, error) {
	if a == nil || b == nil {
		return nil, ErrNoLinkedPortal
	}
	if m == nil {
		return nil, configError(a.Name, ErrNoCamera)
	}
	if a.Portal != nil || b.Portal != nil {
		if err := Link(a.Portal, b.Portal); err != nil {
			return nil, fmt.Errorf("link portals %s and %s: %w", a.Name, b.Name, err)
		}
	}
	if a.Painting != nil || b.Painting != nil {
		if err := LinkPaintings(a.Painting, b.Painting); err != nil {
			Unlink(a.Portal)
			return nil, fmt.Errorf("link paintings %s and %s: %w", a.Name, b.Name, err)
		}
	}

	a.Role, b.Role = Leader, Follower
	for _, g := range []*Gateway{a, b} {
		if g.Painting != nil {
			g.Painting.Settings.FOV = g.Settings.PaintingFOV
		}
		g.applyMode()
	}
	return &Pair{leader: a, follower: b, mover: m}, nil
}

// Leader returns the gateway that drives the transition.
func (p *Pair) Leader() *Gateway {
	return p.leader
}

// Follower returns the other gateway.
func (p *Pair) Follower() *Gateway {
	return p.follower
}

// Mode returns the leader's mode. Both gateways always share it.
func (p *Pair) Mode() Mode {
	return p.leader.Mode
}

// Stage returns the transition stage.
func (p *Pair) Stage() Stage {
	return p.transition.Stage()
}

// Progress is the fraction of the current transition stage completed.
func (p *Pair) Progress() float64 {
	return p.transition.Progress()
}

// SetMode switches both gateways. Switching back to paintings re-arms the
// transition.
func (p *Pair) SetMode(m Mode) {
	p.leader.Mode, p.follower.Mode = m, m
	p.leader.applyMode()
	p.follower.applyMode()
}

// Update runs detection and advances the transition by dt seconds.
func (p *Pair) Update(dt float64) {
	eye := p.mover.Eye()
	p.leader.inRange = p.leader.Contains(eye)
	p.follower.inRange = p.follower.Contains(eye)

	if !p.transition.Active() && p.Mode() == ModePainting {
		switch {
		case p.leader.inRange:
			p.start(p.leader, eye)
		case p.follower.inRange:
			p.start(p.follower, eye)
		}
	}

	before := p.transition.Stage()
	p.transition.Step(dt)
	if before == StageRendezvous && p.transition.Stage() != StageRendezvous {
		p.SetMode(ModePortal)
		Logger().Info("gateways opened", "leader", p.leader.Name, "follower", p.follower.Name)
	}

	if p.transition.Stage() == StageSettling && !p.occupied(eye) {
		p.transition.Settle()
		Logger().Debug("transition settled", "leader", p.leader.Name)
	}
}

func (p *Pair) occupied(eye math3d.Vec3) bool {
	for _, g := range []*Gateway{p.leader, p.follower} {
		if g.inRange || g.Near(eye) {
			return true
		}
	}
	return false
}

// start leads the player to the viewing spot of target on the side they
// approached from, facing the frame.
func (p *Pair) start(target *Gateway, eye math3d.Vec3) {
	s := p.leader.Settings
	side := float64(SideOf(target.Pose, eye))
	fwd := target.Pose.Forward()

	pose := p.mover.Pose()
	pos := target.Pose.Position.Add(fwd.Scale(s.ViewingDistance * side))
	pos.Y = pose.Position.Y

	yaw := math3d.Yaw(target.Pose.Rotation)
	if side > 0 {
		yaw += math.Pi
	}
	rendezvous := math3d.NewPose(pos, math3d.QuatFromEuler(0, yaw, 0))
	push := target.Pose.Position.Add(fwd.Scale(s.PushDistance))
	push.Y = pos.Y

	p.transition.Start(p.mover, rendezvous, push, s.TransitionDuration, s.PushDuration)
	Logger().Info("gateway approached", "gateway", target.Name, "side", side)
}
