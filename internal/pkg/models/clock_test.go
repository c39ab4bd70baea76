package models

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"17:30", NewClockTime(17, 30), false},
		{"00:00", NewClockTime(0, 0), false},
		{"23:59", NewClockTime(23, 59), false},
		{"09:05:30", NewClockTime(9, 5), false},
		{"24:00", 0, true},
		{"17:60", 0, true},
		{"half past five", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClockTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClockTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseClockTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClockTimeRoundTrip(t *testing.T) {
	c := NewClockTime(7, 5)
	if c.String() != "07:05" {
		t.Errorf("String() = %q, want zero-padded 07:05", c.String())
	}
	v, err := c.Value()
	if err != nil {
		t.Fatal(err)
	}
	var scanned ClockTime
	if err := scanned.Scan(v); err != nil {
		t.Fatal(err)
	}
	if scanned != c {
		t.Errorf("round trip = %v, want %v", scanned, c)
	}
}

func TestClockTimeScanTime(t *testing.T) {
	var c ClockTime
	if err := c.Scan(time.Date(2025, 5, 20, 18, 45, 12, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if c != NewClockTime(18, 45) {
		t.Errorf("Scan(time.Time) = %v, want 18:45", c)
	}
}

func TestClockTimeAt(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	at := NewClockTime(17, 30).At(day, loc)
	if at.Hour() != 17 || at.Minute() != 30 {
		t.Errorf("At() = %v, want 17:30 local", at)
	}
	if at.Location() != loc {
		t.Errorf("At() location = %v", at.Location())
	}
}

func TestClockTimeOrdering(t *testing.T) {
	early, late := NewClockTime(9, 0), NewClockTime(21, 15)
	if !early.Before(late) || !late.After(early) {
		t.Error("ordering broken")
	}
	if early.Add(30) != NewClockTime(9, 30) {
		t.Errorf("Add(30) = %v", early.Add(30))
	}
}

func TestSlotValidate(t *testing.T) {
	base := Slot{
		UID:          "x",
		CompositeKey: "aaa11111",
		Date:         time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		StartingTime: NewClockTime(17, 30),
		EndingTime:   NewClockTime(18, 30),
		Spaces:       2,
	}
	if err := base.Validate(); err != nil {
		t.Errorf("valid slot rejected: %v", err)
	}

	inverted := base
	inverted.EndingTime = NewClockTime(17, 0)
	if err := inverted.Validate(); err == nil {
		t.Error("inverted interval accepted")
	}

	negative := base
	negative.Spaces = -1
	if err := negative.Validate(); err == nil {
		t.Error("negative spaces accepted")
	}

	orphan := base
	orphan.CompositeKey = ""
	if err := orphan.Validate(); err == nil {
		t.Error("slot without composite key accepted")
	}
}
