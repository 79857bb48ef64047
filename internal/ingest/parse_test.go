package ingest

import "testing"

func TestParseInt(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"1,234", 0, 1234},
		{" 50 ", 0, 50},
		{"-3", 0, -3},
		{"bad", 7, 7},
		{"", 0, 0},
		{"1.5", 2, 2},
		{"99999999999999999999999", 4, 4},
	}
	for _, tc := range cases {
		if got := ParseInt(tc.in, tc.def); got != tc.want {
			t.Fatalf("ParseInt(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestParseFloat(t *testing.T) {
	if got := ParseFloat(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", *got)
	}
	got := ParseFloat("3.5")
	if got == nil || *got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	for _, in := range []string{"abc", "NaN", "inf", "-Inf", "   "} {
		if got := ParseFloat(in); got != nil {
			t.Fatalf("expected nil for %q, got %v", in, *got)
		}
	}
	def := 1.25
	if got := ParseFloatDefault("x", &def); got != &def {
		t.Fatalf("expected default pointer for malformed input")
	}
}

func TestParseTruthy(t *testing.T) {
	for _, in := range []string{"Yes", "1", "TRUE", " t ", "y"} {
		if !ParseTruthy(in) {
			t.Fatalf("expected %q to be truthy", in)
		}
	}
	for _, in := range []string{"0", "", "no", "false", "nope"} {
		if ParseTruthy(in) {
			t.Fatalf("expected %q to be falsy", in)
		}
	}
}
