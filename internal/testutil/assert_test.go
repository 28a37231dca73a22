package testutil

import (
	"errors"
	"testing"
)

// mockTB captures whether a test failure occurred.
type mockTB struct {
	testing.TB // embedded for unimplemented methods
	failed     bool
}

func (m *mockTB) Helper()                           {}
func (m *mockTB) Fatal(args ...any)                 { m.failed = true }
func (m *mockTB) Fatalf(format string, args ...any) { m.failed = true }

func TestEqual(t *testing.T) {
	m := &mockTB{}

	Equal(m, 1, 1)
	if m.failed {
		t.Error("Equal(1, 1) should pass")
	}

	m.failed = false
	Equal(m, 1, 2)
	if !m.failed {
		t.Error("Equal(1, 2) should fail")
	}
}

func TestSliceEqual(t *testing.T) {
	m := &mockTB{}

	SliceEqual(m, []int{1, 2, 3}, []int{1, 2, 3})
	if m.failed {
		t.Error("equal slices should pass")
	}

	m.failed = false
	SliceEqual(m, []int{1, 2}, []int{1, 2, 3})
	if !m.failed {
		t.Error("different length slices should fail")
	}

	m.failed = false
	SliceEqual(m, []int{1, 2, 3}, []int{1, 9, 3})
	if !m.failed {
		t.Error("different content should fail")
	}
}

func TestNoError(t *testing.T) {
	m := &mockTB{}

	NoError(m, nil)
	if m.failed {
		t.Error("NoError(nil) should pass")
	}

	m.failed = false
	NoError(m, errors.New("boom"))
	if !m.failed {
		t.Error("NoError(err) should fail")
	}
}

func TestErrorContains(t *testing.T) {
	m := &mockTB{}

	ErrorContains(m, errors.New("unknown table fwd"), "fwd")
	if m.failed {
		t.Error("matching error should pass")
	}

	m.failed = false
	ErrorContains(m, nil, "fwd")
	if !m.failed {
		t.Error("nil error should fail")
	}

	m.failed = false
	ErrorContains(m, errors.New("other"), "fwd")
	if !m.failed {
		t.Error("non-matching error should fail")
	}
}

func TestLenTrueFalse(t *testing.T) {
	m := &mockTB{}
	Len(m, []string{"a"}, 1)
	True(m, true)
	False(m, false)
	if m.failed {
		t.Error("passing assertions failed")
	}

	Len(m, []string{"a"}, 2)
	if !m.failed {
		t.Error("Len mismatch should fail")
	}
}

func TestContainsCode(t *testing.T) {
	m := &mockTB{}
	got := "control ingress(inout headers hdr) {\n    apply {\n        fwd.apply();\n    }\n}"

	ContainsCode(m, got, "apply { fwd.apply(); }")
	if m.failed {
		t.Error("whitespace-insensitive match should pass")
	}

	m.failed = false
	ContainsCode(m, got, "egress")
	if !m.failed {
		t.Error("missing fragment should fail")
	}
}

func TestSquash(t *testing.T) {
	Equal(t, "a b c", Squash("  a\n\tb    c\n"))
	Equal(t, "", Squash(" \n "))
}

func TestFormatMsg(t *testing.T) {
	Equal(t, "assertion failed", formatMsg(nil))
	Equal(t, "plain", formatMsg([]any{"plain"}))
	Equal(t, "table fwd", formatMsg([]any{"table %s", "fwd"}))
	Equal(t, "assertion failed", formatMsg([]any{42}))
}
