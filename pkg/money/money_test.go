package money

import "testing"

func TestPercentHalfUp(t *testing.T) {
	tests := []struct {
		name    string
		amount  Cents
		percent int
		want    Cents
	}{
		{"twenty percent of 160.00", 16000, 20, 3200},
		{"rounds half up", 1250, 10, 125},
		{"half cent rounds up", 50, 1, 1},
		{"below half cent rounds down", 49, 1, 0},
		{"full percent", 8000, 100, 8000},
		{"zero percent", 8000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.PercentHalfUp(tt.percent); got != tt.want {
				t.Errorf("PercentHalfUp(%d) = %d, want %d", tt.percent, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		amount Cents
		want   string
	}{
		{16000, "160.00"},
		{8000, "80.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-1250, "-12.50"},
	}

	for _, tt := range tests {
		if got := tt.amount.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"80.00", 8000, false},
		{"12.5", 1250, false},
		{"160", 16000, false},
		{"0.01", 1, false},
		{"-3.25", -325, false},
		{"1.999", 0, true},
		{"abc", 0, true},
		{"1.x", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
