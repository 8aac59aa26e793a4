package planning

import (
	"errors"
	"testing"
)

func TestDays(t *testing.T) {
	tests := []struct {
		size string
		want int
	}{
		{SizeXS, 5},
		{SizeS, 10},
		{SizeM, 20},
		{SizeL, 40},
		{SizeXL, 60},
	}
	for _, tt := range tests {
		got, err := Days(tt.size)
		if err != nil {
			t.Errorf("Days(%q) error: %v", tt.size, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Days(%q) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestDays_Unknown(t *testing.T) {
	for _, size := range []string{"", "xs", "XXL", "M ", "medium"} {
		_, err := Days(size)
		if err == nil {
			t.Errorf("Days(%q): want error, got nil", size)
			continue
		}
		var sizeErr *ErrUnknownSize
		if !errors.As(err, &sizeErr) {
			t.Errorf("Days(%q) error = %T, want *ErrUnknownSize", size, err)
		}
	}
}

func TestValidSize(t *testing.T) {
	for _, size := range Sizes {
		if !ValidSize(size) {
			t.Errorf("ValidSize(%q) = false, want true", size)
		}
	}
	if ValidSize("XXL") {
		t.Error("ValidSize(XXL) = true, want false")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{"P0", "P1", "P2", "P3"} {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"P4", "p0", ""} {
		if ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = true, want false", p)
		}
	}
}
