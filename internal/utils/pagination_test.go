package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 1, 1},      // empty query param
		{"3", 1, 3},     // typical ?page=3
		{"20", 10, 20},  // typical ?page_size=20
		{"-2", 1, -2},   // negatives parse; callers clamp
		{"007", 1, 7},   // leading zeros
		{"two", 1, 1},   // not a number
		{" 5", 1, 1},    // no trimming, by contract
		{"9999999999999999999999", 1, 1}, // overflow
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
