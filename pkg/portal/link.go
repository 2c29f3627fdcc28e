package portal

// Link pairs a and b. Pairing is symmetric and exclusive: a surface has at
// most one partner, and a.Linked() == b exactly when b.Linked() == a.
// Linking two surfaces that are already partners is a no-op.
func Link(a, b *Portal) error {
	if a == nil || b == nil {
		return ErrNoLinkedPortal
	}
	if err := checkLink(a, b, a.linked, b.linked); err != nil {
		return err
	}
	a.linked, b.linked = b, a
	return nil
}

// Unlink breaks p's pair, if any.
func Unlink(p *Portal) {
	if p == nil || p.linked == nil {
		return
	}
	p.linked.linked = nil
	p.linked = nil
}

// LinkPaintings pairs two paintings with the same rules as Link.
func LinkPaintings(a, b *Painting) error {
	if a == nil || b == nil {
		return ErrNoLinkedPortal
	}
	if err := checkLink(a, b, a.linked, b.linked); err != nil {
		return err
	}
	a.linked, b.linked = b, a
	return nil
}

// UnlinkPainting breaks p's pair, if any.
func UnlinkPainting(p *Painting) {
	if p == nil || p.linked == nil {
		return
	}
	p.linked.linked = nil
	p.linked = nil
}

func checkLink[T comparable](a, b, aPartner, bPartner T) error {
	var zero T
	switch {
	case a == b:
		return ErrSelfLink
	case aPartner == b && bPartner == a:
		return nil
	case aPartner != zero || bPartner != zero:
		return ErrAlreadyLinked
	}
	return nil
}
