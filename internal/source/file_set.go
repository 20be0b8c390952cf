package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns every file of a compilation session. Adding files is
// goroutine-safe so independent units can register synthesized files.
type FileSet struct {
	mu    sync.RWMutex
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates an empty FileSet. FileID 0 is reserved so that the zero
// Span never points at a real file.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 1, 16),
		index: make(map[string]FileID),
	}
}

// Add stores normalized content and returns a fresh FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalized := normalizePath(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	raw, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(raw)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips BOM and normalizes CRLF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	var flags FileFlags
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual registers in-memory content (tests, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// AddPathOnly registers a file whose text is unavailable. Spans into it carry
// packed positions (see PackLineCol).
func (fs *FileSet) AddPathOnly(path string) FileID {
	return fs.Add(path, nil, FileNoText)
}

// Get returns the file for id or nil.
func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if id == 0 || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the latest id registered for path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Len reports the number of registered files.
func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files) - 1
}

// Resolve converts a span into line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol, ok bool) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}, false
	}
	if f.Flags&FileNoText != 0 {
		return UnpackLineCol(span.Start), UnpackLineCol(span.End), true
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End), true
}

// Offset maps a line/column position to a byte offset of f. For files
// without text the position is packed instead.
func (f *File) Offset(lc LineCol) uint32 {
	if f == nil || f.Flags&FileNoText != 0 || lc.Line == 0 {
		return PackLineCol(lc)
	}
	var start uint32
	if lc.Line > 1 {
		if int(lc.Line-2) >= len(f.LineIdx) {
			return uint32(len(f.Content)) //nolint:gosec // checked in Add
		}
		start = f.LineIdx[lc.Line-2] + 1
	}
	off := start
	if lc.Col > 1 {
		off += lc.Col - 1
	}
	if size := uint32(len(f.Content)); off > size { //nolint:gosec // checked in Add
		off = size
	}
	return off
}

const colBits = 12

// PackLineCol encodes a position into a single offset for text-less files.
// Columns past 4095 saturate.
func PackLineCol(lc LineCol) uint32 {
	col := min(lc.Col, 1<<colBits-1)
	return lc.Line<<colBits | col
}

// UnpackLineCol reverses PackLineCol.
func UnpackLineCol(off uint32) LineCol {
	return LineCol{Line: off >> colBits, Col: off & (1<<colBits - 1)}
}

// Line returns the text of line n (1-based) without the trailing newline.
func (f *File) Line(n uint32) string {
	if n == 0 || f == nil {
		return ""
	}
	size := uint32(len(f.Content)) //nolint:gosec // checked in Add
	var start uint32
	if n > 1 {
		if int(n-2) >= len(f.LineIdx) {
			return ""
		}
		start = f.LineIdx[n-2] + 1
	}
	end := size
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > size || start > end {
		return ""
	}
	return string(f.Content[start:end])
}
