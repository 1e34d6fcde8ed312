package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		s        string
		def, max int
		want     int
	}{
		{"", 100, 1000, 100},
		{"garbage", 100, 1000, 100},
		{"50", 100, 1000, 50},
		{"0", 100, 1000, 100},
		{"-5", 100, 1000, 100},
		{"5000", 100, 1000, 1000},
		{"1000", 100, 1000, 1000},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.s, tc.def, tc.max); got != tc.want {
			t.Errorf("ClampLimit(%q, %d, %d) = %d, want %d", tc.s, tc.def, tc.max, got, tc.want)
		}
	}
}
