package date

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

// TestTime assert that the Time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.Time() != d2.Time() {
		t.Errorf("invalid Time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	got := New(2025, time.February, 30)
	if want := New(2025, time.March, 2); got != want {
		t.Errorf("New(2025, 2, 30) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2024-10-18 12:34:56.789012", want: New(2024, time.October, 18)},
		{in: "2024-10-18T12:34:56Z", want: New(2024, time.October, 18)},
		{in: " 2024-01-02 ", want: New(2024, time.January, 2)},
		{in: "18/10/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAddAndSub(t *testing.T) {
	d := New(2024, time.December, 31)
	if got, want := d.Add(1), New(2025, time.January, 1); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
	if got := d.Add(-365).Add(365); got != d {
		t.Errorf("Add(-365).Add(365) = %v, want %v", got, d)
	}
	if got := New(2025, time.March, 1).Sub(New(2025, time.February, 1)); got != 28 {
		t.Errorf("Sub() = %d, want 28", got)
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, time.March, 4)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2025-03-04"` {
		t.Errorf("Marshal() = %s", b)
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}
}

func TestRange(t *testing.T) {
	end := New(2025, time.January, 3)
	r := LastDays(end, 3)
	if r.From != New(2024, time.December, 31) || r.To != New(2025, time.January, 2) {
		t.Fatalf("LastDays() = %v", r)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	days := slices.Collect(r.Days())
	want := []Date{New(2024, time.December, 31), New(2025, time.January, 1), New(2025, time.January, 2)}
	if !slices.Equal(days, want) {
		t.Errorf("Days() = %v, want %v", days, want)
	}
	if r.Contains(end) {
		t.Errorf("Contains(%v) = true, want false", end)
	}
	if got := NewRange(end, r.From); got.From != r.From {
		t.Errorf("NewRange() did not swap boundaries: %v", got)
	}
}
