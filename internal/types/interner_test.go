package types

import "testing"

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if got := in.Intern(Type{Kind: KindInt}); got != b.Int {
		t.Fatalf("Int interned twice: %d vs %d", got, b.Int)
	}
	arr := in.ArrayOf(b.Int)
	if in.ArrayOf(b.Int) != arr {
		t.Fatalf("ArrayOf is not stable")
	}
	if in.Format(in.MakeNullable(arr)) != "Array<Int>?" {
		t.Fatalf("Format = %q", in.Format(in.MakeNullable(arr)))
	}
	if in.MakeNotNull(in.MakeNullable(b.String)) != b.String {
		t.Fatalf("nullable round trip changed the id")
	}
}

func TestCanBeNull(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		name string
		id   TypeID
		want bool
	}{
		{"Int", b.Int, false},
		{"Int?", in.MakeNullable(b.Int), true},
		{"Int!", in.MakeFlexible(b.Int), true},
		{"T", in.RegisterTypeParam("T", "f", nil), true},
		{"T: Any", in.RegisterTypeParam("T", "g", []TypeID{b.Any}), false},
	}
	for _, tc := range cases {
		if got := in.CanBeNull(tc.id); got != tc.want {
			t.Errorf("CanBeNull(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSubtyping(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	base := in.RegisterClass("demo.Base", ClassOpen)
	in.SetSupertypes(base, []TypeID{b.Any})
	derived := in.RegisterClass("demo.Derived", 0)
	in.SetSupertypes(derived, []TypeID{base})
	myErr := in.RegisterClass("demo.MyError", 0)
	in.SetSupertypes(myErr, []TypeID{b.Exception})

	cases := []struct {
		name       string
		sub, super TypeID
		want       bool
	}{
		{"derived <: base", derived, base, true},
		{"base !<: derived", base, derived, false},
		{"derived <: base?", derived, in.MakeNullable(base), true},
		{"derived? !<: base", in.MakeNullable(derived), base, false},
		{"derived! <: base", in.MakeFlexible(derived), base, true},
		{"Nothing <: Int", b.Nothing, b.Int, true},
		{"null !<: Int", in.MakeNullable(b.Nothing), b.Int, false},
		{"null <: Int?", in.MakeNullable(b.Nothing), in.MakeNullable(b.Int), true},
		{"Int <: Any", b.Int, b.Any, true},
		{"Int? !<: Any", in.MakeNullable(b.Int), b.Any, false},
		{"Array<Derived> <: Array<Base>", in.ArrayOf(derived), in.ArrayOf(base), true},
		{"error <: Int", b.Error, b.Int, true},
	}
	for _, tc := range cases {
		if got := in.IsSubtype(tc.sub, tc.super); got != tc.want {
			t.Errorf("%s: got %v", tc.name, got)
		}
	}
	if !in.IsThrowable(myErr) || in.IsThrowable(derived) {
		t.Errorf("IsThrowable misclassified classes")
	}
}

func TestRegisterClassMergesFlags(t *testing.T) {
	in := NewInterner()
	id := in.RegisterClass("lib.Gone", ClassLibrary)
	if again := in.RegisterClass("lib.Gone", ClassMissing); again != id {
		t.Fatalf("RegisterClass allocated a second slot")
	}
	info, ok := in.ClassInfo(id)
	if !ok || !info.Flags.Has(ClassLibrary) || !info.Flags.Has(ClassMissing) {
		t.Fatalf("flags not merged: %+v", info)
	}
	if info.Name() != "Gone" {
		t.Fatalf("Name() = %q", info.Name())
	}
}
