package app

import "github.com/alexanderramin/tasklane/internal/domain"

// DropRequest describes one drop of a dragged card. TargetID empty means the
// card was dropped on the empty area of the column named by Group and Lane.
// Offset is the pointer position inside the target card, 0 at its top edge
// and 1 at its bottom edge.
type DropRequest struct {
	DraggedID string
	SourceRef string
	TargetID  string
	Group     string
	Lane      domain.Lane
	Offset    float64
	Mode      domain.BoardMode
	Today     *domain.DateKey
}

type DropResult struct {
	Kind    string
	Summary string
	Changed []string
}

// Applied reports whether the drop changed stored data.
func (r *DropResult) Applied() bool { return len(r.Changed) > 0 }
