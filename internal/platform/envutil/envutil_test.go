package envutil

import (
	"testing"
	"time"
)

func TestStringTrimsAndDefaults(t *testing.T) {
	if got := String("ENVUTIL_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("unset = %q", got)
	}
	t.Setenv("ENVUTIL_TEST_STR", "  value  ")
	if got := String("ENVUTIL_TEST_STR", "fallback"); got != "value" {
		t.Errorf("set = %q", got)
	}
	t.Setenv("ENVUTIL_TEST_STR", "   ")
	if got := String("ENVUTIL_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("blank = %q", got)
	}
}

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "8")
	if got := Int("ENVUTIL_TEST_INT", 3); got != 8 {
		t.Errorf("parsed = %d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "eight")
	if got := Int("ENVUTIL_TEST_INT", 3); got != 3 {
		t.Errorf("garbage = %d", got)
	}
}

func TestBoolAcceptsCommonSpellings(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"0", true, false},
		{"false", true, false},
		{"No", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Setenv("ENVUTIL_TEST_BOOL", tc.raw)
			if got := Bool("ENVUTIL_TEST_BOOL", tc.def); got != tc.want {
				t.Errorf("Bool(%q, %v) = %v, want %v", tc.raw, tc.def, got, tc.want)
			}
		})
	}
}

func TestDurationParsesOrDefaults(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "90s")
	if got := Duration("ENVUTIL_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("parsed = %v", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "soon")
	if got := Duration("ENVUTIL_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("garbage = %v", got)
	}
}
