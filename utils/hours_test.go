package utils

import "testing"

func TestDiffHours(t *testing.T) {
	cases := []struct {
		start, end string
		want       float64
	}{
		{"09:00:00", "09:00:00", 0.0},
		{"09:00:00", "10:30:00", 1.5},
		// 14 minutes is 0.233... hours, truncated to 0.2.
		{"09:15:00", "09:29:00", 0.2},
		{"00:00:00", "23:59:59", 23.9},
		{"09:00:00", "09:05:59", 0.0},
		{"09:00:00", "09:06:00", 0.1},
		// End before start yields a negative duration, not an error.
		{"09:29:00", "09:15:00", -0.2},
		{"10:30:00", "09:00:00", -1.5},
	}
	for _, tc := range cases {
		got, err := DiffHours(tc.start, tc.end)
		if err != nil {
			t.Fatalf("DiffHours(%q, %q): unexpected error: %v", tc.start, tc.end, err)
		}
		if got != tc.want {
			t.Fatalf("DiffHours(%q, %q) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestDiffHours_InvalidFormat(t *testing.T) {
	for _, bad := range []string{"", "9:00", "24:00:00", "09:60:00", "09:00:61", "ab:cd:ef"} {
		if _, err := DiffHours(bad, "10:00:00"); err == nil {
			t.Fatalf("DiffHours(%q, ...): expected error", bad)
		}
		if _, err := DiffHours("10:00:00", bad); err == nil {
			t.Fatalf("DiffHours(..., %q): expected error", bad)
		}
	}
}

func TestDiffTenths_TruncatesTowardZero(t *testing.T) {
	got, err := DiffTenths("09:00:00", "09:14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Fatalf("DiffTenths = %d, want 2", got)
	}
	got, err = DiffTenths("09:14:00", "09:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -2 {
		t.Fatalf("DiffTenths = %d, want -2", got)
	}
}
