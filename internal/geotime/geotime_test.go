package geotime

import (
	"testing"
	"time"
)

func TestResolveTZ(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		want    string
		wantErr bool
	}{
		{"Fortaleza", -3.7319, -38.5267, "America/Fortaleza", false},
		{"London", 51.5074, -0.1278, "Europe/London", false},
		{"latitude out of range", 91.0, 0.0, "", true},
		{"longitude out of range", 0.0, 181.0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTZ(tt.lat, tt.lon)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveTZ(%v, %v) expected error, got %q", tt.lat, tt.lon, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveTZ(%v, %v) unexpected error: %v", tt.lat, tt.lon, err)
			}
			if got != tt.want {
				t.Errorf("ResolveTZ(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestResolveTZMemoised(t *testing.T) {
	first, err := ResolveTZ(40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ResolveTZ(40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error on cached lookup: %v", err)
	}
	if first != second {
		t.Errorf("memoised lookup returned %q, first returned %q", second, first)
	}
}

func TestToLocal(t *testing.T) {
	utc := time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC)

	local, err := ToLocal(utc, "America/Fortaleza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Fortaleza is UTC-3 year round
	if local.Hour() != 14 {
		t.Errorf("local hour = %d, want 14", local.Hour())
	}
	if !local.Equal(utc) {
		t.Errorf("instant changed during conversion")
	}

	// Non-UTC input is rejected
	loc, _ := time.LoadLocation("America/New_York")
	if _, err := ToLocal(utc.In(loc), "America/Fortaleza"); err == nil {
		t.Error("expected error for non-UTC input")
	}

	if _, err := ToLocal(utc, "Not/AZone"); err == nil {
		t.Error("expected error for invalid zone")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-06-15", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2024-13-01", true},
		{"15-06-2024", true},
		{"2024/06/15", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestDayOfYear(t *testing.T) {
	d, _ := ParseDate("2024-03-01")
	if got := DayOfYear(d); got != 61 {
		t.Errorf("DayOfYear(2024-03-01) = %d, want 61 (leap year)", got)
	}
	d, _ = ParseDate("2023-03-01")
	if got := DayOfYear(d); got != 60 {
		t.Errorf("DayOfYear(2023-03-01) = %d, want 60", got)
	}
}

func TestDOYWindowWrap(t *testing.T) {
	got := DOYWindow(3, 5)
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 363, 364, 365}
	if len(got) != len(want) {
		t.Fatalf("DOYWindow(3, 5) has %d elements, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DOYWindow(3, 5)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDOYWindowSize(t *testing.T) {
	tests := []struct {
		target, w, size int
	}{
		{180, 7, 15},
		{1, 10, 21},
		{365, 3, 7},
		{100, 0, 1},
		{50, 182, 365}, // window covers the whole cycle
	}

	for _, tt := range tests {
		got := DOYWindow(tt.target, tt.w)
		if len(got) != tt.size {
			t.Errorf("DOYWindow(%d, %d) size = %d, want %d", tt.target, tt.w, len(got), tt.size)
		}
	}
}
