package v1model

import (
	"slices"
	"testing"
)

func TestLibraryFiles(t *testing.T) {
	libs := Libraries()
	if len(libs) != 2 {
		t.Fatalf("got %d libraries, want 2", len(libs))
	}
	if libs[0].File() != "core.p4" || libs[1].File() != "v1model.p4" {
		t.Errorf("include order = %q, %q", libs[0].File(), libs[1].File())
	}
	if Library(9).File() != "" || Library(9).Names() != nil {
		t.Error("unknown library should have no file and no names")
	}
}

func TestReserved(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"table", true},
		{"NoAction", true},
		{"hdr", true},
		{"standard_metadata", true},
		{"ParserImpl", true},
		{"main", true},
		{"ingress", false},
		{"egress", false},
		{"ipv4_lpm", false},
	}
	for _, tt := range tests {
		if got := IsReserved(tt.name); got != tt.expected {
			t.Errorf("IsReserved(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestReservedStableAndUnique(t *testing.T) {
	first := Reserved()
	if !slices.Equal(first, Reserved()) {
		t.Fatal("Reserved() not stable")
	}
	seen := make(map[string]bool)
	for _, n := range first {
		if seen[n] {
			t.Errorf("duplicate reserved name %q", n)
		}
		seen[n] = true
	}
	// Mutating the result must not leak into later calls.
	first[0] = "mutated"
	if Reserved()[0] == "mutated" {
		t.Error("Reserved() returned shared storage")
	}
}

func TestLookupPrimitive(t *testing.T) {
	p, ok := LookupPrimitive("modify_field")
	if !ok {
		t.Fatal("modify_field missing")
	}
	if !p.Accepts(2) || !p.Accepts(3) || p.Accepts(1) || p.Accepts(4) {
		t.Errorf("modify_field arity wrong: %+v", p)
	}
	if _, ok := LookupPrimitive("frobnicate"); ok {
		t.Error("unknown primitive found")
	}
	if len(Primitives()) == 0 {
		t.Error("empty primitive table")
	}
}

func TestSuggestPrimitive(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"drp", "drop"},
		{"regiser_read", "register_read"},
		{"MODIFY_FIELD", "modify_field"},
		{"frobnicate", ""},
	}
	for _, tt := range tests {
		if got := SuggestPrimitive(tt.in); got != tt.want {
			t.Errorf("SuggestPrimitive(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashAlgorithm(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"crc16", "crc16", true},
		{"csum16", "csum16", true},
		{"crc_32", "crc32", true},
		{"sha256", "", false},
	}
	for _, tt := range tests {
		got, ok := HashAlgorithm(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("HashAlgorithm(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCounterMeterTypes(t *testing.T) {
	if v, ok := CounterType("packets_and_bytes"); !ok || v != "packets_and_bytes" {
		t.Error("packets_and_bytes counter not mapped")
	}
	if _, ok := MeterType("packets_and_bytes"); ok {
		t.Error("meters have no packets_and_bytes kind")
	}
}
