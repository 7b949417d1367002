package layout

import "testing"

func TestCalculateListHeight(t *testing.T) {
	cfg := DefaultConfig().List

	if got := CalculateListHeight(24, cfg); got != 18 {
		t.Errorf("expected 18, got %d", got)
	}
	if got := CalculateListHeight(5, cfg); got != cfg.MinHeight {
		t.Errorf("expected min height %d, got %d", cfg.MinHeight, got)
	}
}

func TestCalculateVisibleItems(t *testing.T) {
	cfg := DefaultConfig().List

	tests := []struct {
		height int
		want   int
	}{
		{18, 9},
		{5, 2},
		{1, 1},
	}
	for _, tt := range tests {
		if got := CalculateVisibleItems(tt.height, cfg); got != tt.want {
			t.Errorf("CalculateVisibleItems(%d) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name                      string
		selected, total, viewport int
		want                      int
	}{
		{"fits", 3, 5, 10, 0},
		{"top", 0, 50, 10, 0},
		{"middle centers", 25, 50, 10, 20},
		{"bottom clamps", 49, 50, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateViewportOffset(tt.selected, tt.total, tt.viewport); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCalculateModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		terminalWidth int
		want          int
	}{
		{200, 80}, // clamps to max
		{100, 60},
		{40, 30},  // min width
		{20, 16},  // never wider than terminal - 4
		{3, 1},
	}
	for _, tt := range tests {
		if got := CalculateModalWidth(tt.terminalWidth, cfg); got != tt.want {
			t.Errorf("CalculateModalWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
		}
	}
}
