package dag

import (
	"slices"
)

// LibraryID indexes a library name in a LibraryIndex.
type LibraryID uint32

// LibraryMeta is what the graph needs to know about one library on the
// library path.
type LibraryMeta struct {
	Name    string
	Path    string
	Depends []string
}

type LibraryIndex struct {
	NameToID map[string]LibraryID
	IDToName []string
}

// BuildIndex assigns ids in name order to every library and every
// dependency mentioned, present or not.
func BuildIndex(metas []LibraryMeta) LibraryIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Name != "" {
			uniq[meta.Name] = struct{}{}
		}
		for _, dep := range meta.Depends {
			if dep != "" {
				uniq[dep] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	slices.Sort(names)

	nameToID := make(map[string]LibraryID, len(names))
	for i, name := range names {
		nameToID[name] = LibraryID(i)
	}
	return LibraryIndex{NameToID: nameToID, IDToName: names}
}
