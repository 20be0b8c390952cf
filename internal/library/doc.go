// Package library reads and writes persisted vela libraries.
//
// A library is a directory (or a .vlib zip of one) with this layout:
//
//	manifest                 TOML: unique_name, abi_version, compiler_version, ...
//	linkdata/module.msgpack  exported declarations, decoded lazily by name
//	ir/                      reserved for serialized bodies
//
// Writer composes a BaseWriter that owns the layout with a MetadataWriter
// and an IRWriter. Reader implements symbols.LibraryProvider.
package library
