package diag

import (
	"testing"

	"vela/internal/source"
)

func TestBagLimitKeepsFatal(t *testing.T) {
	bag := NewBag(1)
	r := BagReporter{Bag: bag}
	Reportf(r, SevError, SemaTypeMismatch, source.Span{File: 1}, "first %d", 1)
	Reportf(r, SevError, SemaTypeMismatch, source.Span{File: 1}, "second")
	ReportFatal(r, InternalMalformedIR, source.Span{File: 1}, "boom").Emit()

	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", bag.Dropped())
	}
	if !bag.HasFatal() || !bag.HasErrors() {
		t.Fatalf("expected fatal and error state")
	}
	if got := bag.Items()[0].Args; len(got) != 1 || got[0] != "1" {
		t.Fatalf("args = %v", got)
	}
}

func TestDiagnosticWithNoteDoesNotAlias(t *testing.T) {
	base := New(SevWarning, SemaShadowedName, source.Span{}, "x").WithNote(source.Span{}, "a")
	left := base.WithNote(source.Span{}, "left")
	right := base.WithNote(source.Span{}, "right")
	if left.Notes[1].Msg != "left" || right.Notes[1].Msg != "right" {
		t.Fatalf("notes alias each other: %v / %v", left.Notes, right.Notes)
	}
	if len(base.Notes) != 1 {
		t.Fatalf("base mutated: %v", base.Notes)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 1, Start: 3, End: 4}
	for range 3 {
		r.Report(SemaSpreadOfNullable, SevError, span, "spread", nil, nil)
	}
	r.Report(SemaSpreadOfNullable, SevError, source.Span{File: 1, Start: 5, End: 6}, "spread", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code     Code
		id       string
		internal bool
	}{
		{SemaSpreadOfNullable, "SEM3012", false},
		{InternalUnresolvedDelegation, "ICE9001", true},
		{SynMalformedTree, "SYN2001", false},
		{IOIncompatibleABI, "IO4002", false},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.IsInternal(); got != tt.internal {
			t.Errorf("%s.IsInternal() = %v", tt.id, got)
		}
	}
}

func TestFormatShortKeepsReportOrder(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.AddVirtual("unit.kt", []byte("a\nb\n"))
	diags := []Diagnostic{
		NewError(SemaTypeMismatch, source.Span{File: f, Start: 2, End: 3}, "second\nline"),
		New(SevWarning, SemaShadowedName, source.Span{File: f, Start: 0, End: 1}, "first"),
	}
	want := "error SEM3010 unit.kt:2:1 second line\n" +
		"warning SEM3004 unit.kt:1:1 first"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("short:\n%s\nwant:\n%s", got, want)
	}
	wantGolden := "warning SEM3004 unit.kt:1:1 first\n" +
		"error SEM3010 unit.kt:2:1 second line"
	if got := FormatGoldenDiagnostics(diags, fs, false); got != wantGolden {
		t.Fatalf("golden:\n%s\nwant:\n%s", got, wantGolden)
	}
}
