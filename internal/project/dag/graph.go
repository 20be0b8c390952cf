package dag

import (
	"fmt"
	"slices"
	"strings"

	"vela/internal/diag"
	"vela/internal/source"
)

// Graph links each library to the libraries that depend on it, so a
// topological order lists dependencies first.
type Graph struct {
	Edges   [][]LibraryID // Edges[dep] = dependents
	Indeg   []int
	Present []bool // the library is on the path, not only depended upon
}

type LibrarySlot struct {
	Meta    LibraryMeta
	Present bool
}

// BuildGraph links metas and reports duplicate names and dependencies
// missing from the path.
func BuildGraph(idx LibraryIndex, metas []LibraryMeta, r diag.Reporter) (Graph, []LibrarySlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]LibraryID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]LibrarySlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, meta := range metas {
		id, ok := idx.NameToID[meta.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			diag.ReportError(r, diag.ProjDuplicateLibrary, source.Span{},
				fmt.Sprintf("library %q is provided by both %s and %s", meta.Name, slot.Meta.Path, meta.Path)).
				WithArgs(meta.Name).Emit()
			continue
		}
		slot.Meta = meta
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[LibraryID]struct{}, len(slot.Meta.Depends))
		for _, dep := range slot.Meta.Depends {
			depID, ok := idx.NameToID[dep]
			if !ok {
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			if depID == LibraryID(from) {
				diag.ReportError(r, diag.ProjLibraryCycle, source.Span{},
					fmt.Sprintf("library %q depends on itself", slot.Meta.Name)).WithArgs(slot.Meta.Name).Emit()
				continue
			}
			if !g.Present[int(depID)] {
				diag.ReportWarning(r, diag.ProjMissingLibrary, source.Span{},
					fmt.Sprintf("library %q depends on %q, which is not on the library path", slot.Meta.Name, dep)).
					WithArgs(slot.Meta.Name, dep).Emit()
				continue
			}
			g.Edges[int(depID)] = append(g.Edges[int(depID)], LibraryID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g, slots
}

// ReportCycles reports every library left in a dependency cycle.
func ReportCycles(idx LibraryIndex, topo *Topo, r diag.Reporter) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")
	for _, name := range names {
		diag.ReportError(r, diag.ProjLibraryCycle, source.Span{},
			fmt.Sprintf("library %q participates in a dependency cycle: %s", name, summary)).WithArgs(name).Emit()
	}
}

// Order returns the present libraries, dependencies before dependents;
// libraries in a cycle follow in name order.
func Order(metas []LibraryMeta, r diag.Reporter) []LibraryMeta {
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, metas, r)
	topo := ToposortKahn(g)
	ReportCycles(idx, topo, r)
	out := make([]LibraryMeta, 0, len(topo.Order)+len(topo.Cycles))
	for _, id := range topo.Order {
		out = append(out, slots[int(id)].Meta)
	}
	for _, id := range topo.Cycles {
		out = append(out, slots[int(id)].Meta)
	}
	return out
}
