package drag

// Zone fractions of a card's height.
const (
	EdgeFraction = 0.2
	NestFraction = 1 - 2*EdgeFraction
)

type Zone int

const (
	ZoneBefore Zone = iota
	ZoneNest
	ZoneAfter
)

func (z Zone) String() string {
	switch z {
	case ZoneBefore:
		return "before"
	case ZoneAfter:
		return "after"
	default:
		return "nest"
	}
}

// Rect is the vertical extent of a card.
type Rect struct {
	Top    float64
	Height float64
}

// Pointer is the vertical pointer position, in the same units as Rect.
type Pointer struct {
	Y float64
}

// ZoneOf splits r into top 20% before, middle 60% nest and bottom 20%
// after. Positions outside the card clamp to the nearest edge zone.
func ZoneOf(p Pointer, r Rect) Zone {
	if r.Height <= 0 {
		return ZoneNest
	}
	f := (p.Y - r.Top) / r.Height
	switch {
	case f < EdgeFraction:
		return ZoneBefore
	case f > 1-EdgeFraction:
		return ZoneAfter
	default:
		return ZoneNest
	}
}
