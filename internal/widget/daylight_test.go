package widget

import "testing"

func TestIsDaytime(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		want    bool
	}{
		{"before sunrise", 999, false},
		{"at sunrise", 1000, true},
		{"midday", 1500, true},
		{"just before sunset", 1999, true},
		{"at sunset", 2000, false},
		{"after sunset", 2500, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDaytime(tc.current, 1000, 2000); got != tc.want {
				t.Fatalf("IsDaytime(%d, 1000, 2000) = %v, want %v", tc.current, got, tc.want)
			}
		})
	}
}

func TestIsDaytimeInvertedWindow(t *testing.T) {
	for _, current := range []int64{500, 1000, 1500, 2000, 2500} {
		if IsDaytime(current, 2000, 1000) {
			t.Fatalf("expected night for %d when sunset precedes sunrise", current)
		}
	}
}
