package portal

import (
	"math"
	"time"
)

// Settings are the per-portal rendering tunables.
type Settings struct {
	// RecursionLimit bounds nested portal-in-portal rendering. At least 1.
	RecursionLimit int

	// NearClipOffset pushes the oblique near plane toward the camera.
	NearClipOffset float64

	// NearClipLimit is the camera-space distance below which the oblique
	// near plane is not used.
	NearClipLimit float64

	// ProjectionScale exaggerates the field of view compensation. 1 is exact.
	ProjectionScale float64
}

// DefaultSettings returns the standard portal settings.
func DefaultSettings() Settings {
	return Settings{
		RecursionLimit:  5,
		NearClipOffset:  0.05,
		NearClipLimit:   0.2,
		ProjectionScale: 1,
	}
}

// Validate clamps RecursionLimit to at least 1 and replaces a non-positive
// ProjectionScale with 1.
func (s *Settings) Validate() {
	if s.RecursionLimit < 1 {
		s.RecursionLimit = 1
	}
	if s.ProjectionScale <= 0 {
		s.ProjectionScale = 1
	}
}

// PaintingSettings control where a painting's camera observes from.
type PaintingSettings struct {
	ViewingDistance float64 // along the linked painting's forward axis
	ViewingHeight   float64 // along the linked painting's up axis
	BaseWidth       int     // view surface width in pixels
	FOV             float64 // radians; 0 uses the player's field of view
}

// DefaultPaintingSettings returns the standard painting settings.
func DefaultPaintingSettings() PaintingSettings {
	return PaintingSettings{
		ViewingDistance: 10,
		ViewingHeight:   2,
		BaseWidth:       1024,
	}
}

func (s *PaintingSettings) validate() {
	if s.BaseWidth < 1 {
		s.BaseWidth = 1
	}
}

// PairSettings control the detection volume and staged transition of a
// painting/portal pair.
type PairSettings struct {
	PortalWidth        float64
	PortalHeight       float64
	ViewingDistance    float64
	TransitionDuration time.Duration
	PushDistance       float64
	PushDuration       time.Duration
	PaintingFOV        float64 // radians
}

// DefaultPairSettings returns the standard pair settings.
func DefaultPairSettings() PairSettings {
	return PairSettings{
		PortalWidth:        2,
		PortalHeight:       4,
		ViewingDistance:    10,
		TransitionDuration: time.Second,
		PushDistance:       0,
		PushDuration:       500 * time.Millisecond,
		PaintingFOV:        17.2 * math.Pi / 180,
	}
}
