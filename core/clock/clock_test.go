package clock

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Time
		wantErr bool
	}{
		{name: "midnight", in: "00:00", want: 0},
		{name: "morning", in: "08:30", want: 510},
		{name: "no padding", in: "8:05", want: 485},
		{name: "end of day", in: "24:00", want: 1440},
		{name: "past end of day", in: "24:01", wantErr: true},
		{name: "bad minutes", in: "10:60", wantErr: true},
		{name: "no separator", in: "1000", wantErr: true},
		{name: "garbage", in: "ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeArithmetic(t *testing.T) {
	start := MustParseTime("08:00")
	if got := start.AddMinutes(90).String(); got != "09:30" {
		t.Errorf("AddMinutes(90) = %s, want 09:30", got)
	}
	if got := start.AddMinutes(5).String(); got != "08:05" {
		t.Errorf("AddMinutes(5) = %s, want 08:05", got)
	}
	if got := MinutesBetween(start, MustParseTime("10:00")); got != 120 {
		t.Errorf("MinutesBetween = %d, want 120", got)
	}
	if got := MinutesBetween(MustParseTime("10:00"), start); got != -120 {
		t.Errorf("MinutesBetween = %d, want -120", got)
	}
	if !start.Before(MustParseTime("08:01")) || start.After(MustParseTime("08:01")) {
		t.Error("ordering of 08:00 and 08:01 is wrong")
	}
}

func TestTimeJSON(t *testing.T) {
	data, err := json.Marshal(MustParseTime("07:45"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"07:45"` {
		t.Errorf("Marshal = %s, want \"07:45\"", data)
	}
	var got Time
	if err := json.Unmarshal([]byte(`"13:15"`), &got); err != nil {
		t.Fatal(err)
	}
	if got != MustParseTime("13:15") {
		t.Errorf("Unmarshal = %s, want 13:15", got)
	}
}

func TestNextMonday(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{today: "2025-01-05", want: "2025-01-06"}, // Sunday
		{today: "2025-01-06", want: "2025-01-13"}, // Monday
		{today: "2025-01-08", want: "2025-01-13"}, // Wednesday
		{today: "2025-01-11", want: "2025-01-13"}, // Saturday
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			got := MustParseDate(tt.today).NextMonday()
			if got.String() != tt.want {
				t.Errorf("NextMonday() = %s, want %s", got, tt.want)
			}
			if got.Weekday() != Monday {
				t.Errorf("NextMonday().Weekday() = %s", got.Weekday())
			}
		})
	}
}

func TestDate(t *testing.T) {
	d := NewDate(2025, time.January, 31)
	if got := d.AddDays(1).String(); got != "2025-02-01" {
		t.Errorf("AddDays(1) = %s", got)
	}
	if d.Weekday() != Friday {
		t.Errorf("Weekday() = %s, want Friday", d.Weekday())
	}
	if !d.Before(d.AddDays(1)) || !d.Equal(MustParseDate("2025-01-31")) {
		t.Error("date comparisons are wrong")
	}

	var scanned Date
	if err := scanned.Scan("2025-03-04T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if scanned.String() != "2025-03-04" {
		t.Errorf("Scan = %s", scanned)
	}

	var zero Date
	data, _ := json.Marshal(zero)
	if string(data) != "null" {
		t.Errorf("zero date marshals to %s, want null", data)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{in: "0", want: Sunday},
		{in: "6", want: Saturday},
		{in: "mon", want: Monday},
		{in: " Wednesday", want: Wednesday},
		{in: "THU", want: Thursday},
		{in: "7", wantErr: true},
		{in: "mo", wantErr: true},
		{in: "funday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekday(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
