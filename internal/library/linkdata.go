package library

import (
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/symbols"
)

// Current schema version - increment when the linkdata layout changes.
const linkdataSchema uint16 = 1

const (
	manifestPath = "manifest"
	linkdataPath = "linkdata/module.msgpack"
	irDir        = "ir"
)

// linkdata is the on-disk form of the exported declarations. Each
// declaration is encoded separately so readers decode only what is used.
type linkdata struct {
	Schema   uint16                        `msgpack:"schema"`
	Packages map[string][]string           `msgpack:"packages"`
	Decls    map[string]msgpack.RawMessage `msgpack:"decls"`
}

func newLinkdata(decls []symbols.ExternalDecl) (*linkdata, error) {
	ld := &linkdata{
		Schema:   linkdataSchema,
		Packages: make(map[string][]string),
		Decls:    make(map[string]msgpack.RawMessage, len(decls)),
	}
	for i := range decls {
		d := &decls[i]
		if _, dup := ld.Decls[d.FQName]; dup {
			return nil, fmt.Errorf("duplicate declaration %s", d.FQName)
		}
		raw, err := msgpack.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", d.FQName, err)
		}
		ld.Decls[d.FQName] = raw
		pkg := d.Package()
		ld.Packages[pkg] = append(ld.Packages[pkg], d.FQName)
	}
	for _, names := range ld.Packages {
		slices.Sort(names)
	}
	return ld, nil
}

func (ld *linkdata) decode(fqName string) (*symbols.ExternalDecl, error) {
	raw, ok := ld.Decls[fqName]
	if !ok {
		return nil, nil
	}
	var d symbols.ExternalDecl
	if err := msgpack.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fqName, err)
	}
	return &d, nil
}
