package portal

// State is where a traveller is relative to one portal.
type State int

const (
	Untracked   State = iota // not in the portal's detection volume
	InThreshold              // tracked; crossing is checked every frame
)

func (s State) String() string {
	switch s {
	case Untracked:
		return "untracked"
	case InThreshold:
		return "in-threshold"
	}
	return "unknown"
}

// tracked is a registered traveller and the side of the portal it was on
// at the end of the previous frame.
type tracked struct {
	traveller    Traveller
	previousSide int
}

// Registry is the ordered set of travellers inside one portal's threshold.
// A traveller belongs to at most one registry at a time; the portal hands it
// over when it crosses.
type Registry struct {
	entries []*tracked
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers t with its current side. It returns false if t is already
// registered.
func (r *Registry) Add(t Traveller, side int) bool {
	if r.find(t) >= 0 {
		return false
	}
	r.entries = append(r.entries, &tracked{traveller: t, previousSide: side})
	return true
}

// Remove unregisters t, reporting whether it was registered.
func (r *Registry) Remove(t Traveller) bool {
	i := r.find(t)
	if i < 0 {
		return false
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return true
}

// Contains reports whether t is registered.
func (r *Registry) Contains(t Traveller) bool {
	return r.find(t) >= 0
}

// State returns InThreshold for registered travellers.
func (r *Registry) State(t Traveller) State {
	if r.Contains(t) {
		return InThreshold
	}
	return Untracked
}

// PreviousSide returns the side recorded for t, or 0 if it is not registered.
func (r *Registry) PreviousSide(t Traveller) int {
	if i := r.find(t); i >= 0 {
		return r.entries[i].previousSide
	}
	return 0
}

// SetPreviousSide records side for t if it is registered.
func (r *Registry) SetPreviousSide(t Traveller, side int) {
	if i := r.find(t); i >= 0 {
		r.entries[i].previousSide = side
	}
}

// Len returns the number of registered travellers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Travellers returns a snapshot of the registered travellers in
// registration order.
func (r *Registry) Travellers() []Traveller {
	out := make([]Traveller, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.traveller
	}
	return out
}

func (r *Registry) find(t Traveller) int {
	for i, e := range r.entries {
		if e.traveller == t {
			return i
		}
	}
	return -1
}
