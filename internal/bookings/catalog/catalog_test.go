package catalog

import (
	"testing"
	"time"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name       string
		slot       string
		wantHour   int
		wantMinute int
		wantError  bool
	}{
		{
			name:       "morning slot",
			slot:       "09:30 AM",
			wantHour:   9,
			wantMinute: 30,
		},
		{
			name:       "noon stays twelve",
			slot:       "12:00 PM",
			wantHour:   12,
			wantMinute: 0,
		},
		{
			name:       "midnight rolls to zero",
			slot:       "12:15 AM",
			wantHour:   0,
			wantMinute: 15,
		},
		{
			name:       "pm adds twelve",
			slot:       "10:00 PM",
			wantHour:   22,
			wantMinute: 0,
		},
		{
			name:       "one thirty pm",
			slot:       "01:30 PM",
			wantHour:   13,
			wantMinute: 30,
		},
		{
			name:      "missing modifier",
			slot:      "09:30",
			wantError: true,
		},
		{
			name:      "bad modifier",
			slot:      "09:30 XM",
			wantError: true,
		},
		{
			name:      "not a clock",
			slot:      "garbage AM",
			wantError: true,
		},
		{
			name:      "hour out of range",
			slot:      "13:00 PM",
			wantError: true,
		},
		{
			name:      "empty",
			slot:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseSlot(tt.slot)
			if (err != nil) != tt.wantError {
				t.Fatalf("ParseSlot(%q) error = %v, wantError %v", tt.slot, err, tt.wantError)
			}
			if err != nil {
				return
			}
			if hour != tt.wantHour || minute != tt.wantMinute {
				t.Errorf("ParseSlot(%q) = %d:%d, want %d:%d", tt.slot, hour, minute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestParseSlot_AllCatalogSlots(t *testing.T) {
	for _, slot := range Slots {
		if _, _, err := ParseSlot(slot); err != nil {
			t.Errorf("catalog slot %q does not parse: %v", slot, err)
		}
	}
}

func TestIsPast(t *testing.T) {
	// Fixed reference clock: 2026-02-10 14:30 local.
	now := time.Date(2026, 2, 10, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		date string
		slot string
		want bool
	}{
		{
			name: "future date never past",
			date: "2026-02-11",
			slot: "09:30 AM",
			want: false,
		},
		{
			name: "earlier date always past",
			date: "2026-02-09",
			slot: "10:00 PM",
			want: true,
		},
		{
			name: "today earlier hour",
			date: "2026-02-10",
			slot: "11:00 AM",
			want: true,
		},
		{
			name: "today same minute counts as past",
			date: "2026-02-10",
			slot: "02:30 PM",
			want: true,
		},
		{
			name: "today later slot",
			date: "2026-02-10",
			slot: "03:00 PM",
			want: false,
		},
		{
			name: "today malformed slot treated as open",
			date: "2026-02-10",
			slot: "oops",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPast(tt.date, tt.slot, now); got != tt.want {
				t.Errorf("IsPast(%q, %q) = %v, want %v", tt.date, tt.slot, got, tt.want)
			}
		})
	}
}

func TestSlotInstant(t *testing.T) {
	got, err := SlotInstant("2026-03-01", "10:00 AM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("SlotInstant = %v, want %v", got, want)
	}

	if _, err := SlotInstant("01-03-2026", "10:00 AM"); err == nil {
		t.Errorf("expected error for non-ISO date")
	}
}
