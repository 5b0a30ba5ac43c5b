package importer

import (
	"bytes"

	"github.com/bytedance/sonic"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// Summary counts what a merge did.
type Summary struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
}

// Merge returns existing with every record of snap laid over it. With
// replace set, records missing from snap are dropped. Neither input is
// modified.
func Merge(existing domain.TaskMap, snap Snapshot, replace bool) domain.TaskMap {
	out := make(domain.TaskMap, len(existing)+len(snap))
	if !replace {
		for id, t := range existing {
			out[id] = t.Clone()
		}
	}
	for id, t := range snap {
		if t != nil {
			out[id] = t.Clone()
		}
	}
	return out
}

// Diff counts the records merged differs from existing in.
func Diff(existing, merged domain.TaskMap) Summary {
	var s Summary
	for id, t := range merged {
		prev, ok := existing[id]
		switch {
		case !ok:
			s.Added++
		case sameRecord(prev, t):
			s.Unchanged++
		default:
			s.Updated++
		}
	}
	for id := range existing {
		if _, ok := merged[id]; !ok {
			s.Removed++
		}
	}
	return s
}

func sameRecord(a, b *domain.Task) bool {
	ea, errA := sonic.ConfigStd.Marshal(a)
	eb, errB := sonic.ConfigStd.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ea, eb)
}
