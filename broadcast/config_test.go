package broadcast

import (
	"testing"

	"github.com/kbukum/streamcast/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != "broadcast" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Capacity != DefaultCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultCapacity, cfg.Capacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code errors.ErrorCode
	}{
		{"missing name", Config{Capacity: 1}, errors.ErrCodeMissingField},
		{"zero capacity", Config{Name: "b"}, errors.ErrCodeInvalidCapacity},
		{"negative capacity", Config{Name: "b", Capacity: -2}, errors.ErrCodeInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	h, err := NewFromConfig(FromSlice([]int{1, 2, 3}), Config{Name: "cfg", Capacity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close()

	s := h.Stats()
	if s.Name != "cfg" || s.Capacity != 2 {
		t.Errorf("unexpected stats %+v", s)
	}
	if got := values(collect(t, h)); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestNewFromConfig_OptionOverridesName(t *testing.T) {
	h, err := NewFromConfig(FromSlice([]int{}), Config{Name: "cfg"}, WithName("override"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close()
	if h.Stats().Name != "override" {
		t.Errorf("expected option to win, got %q", h.Stats().Name)
	}
	if h.Stats().Capacity != DefaultCapacity {
		t.Errorf("expected default capacity, got %d", h.Stats().Capacity)
	}
}

func TestNewFromConfig_RejectsNegativeCapacity(t *testing.T) {
	if _, err := NewFromConfig(FromSlice([]int{}), Config{Capacity: -1}); !errors.HasCode(err, errors.ErrCodeInvalidCapacity) {
		t.Errorf("expected INVALID_CAPACITY, got %v", err)
	}
}
