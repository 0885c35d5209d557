package gesture

import (
	"math"
	"testing"
	"time"
)

func TestHintFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		offset        float64
		wantRotation  float64
		wantOpacity   float64
		wantIndicator Direction
		wantBadge     float64
	}{
		{offset: 0, wantRotation: 0, wantOpacity: 1, wantIndicator: None, wantBadge: 0},
		{offset: 50, wantRotation: 2.5, wantOpacity: 0.9, wantIndicator: Accept, wantBadge: 0.5},
		{offset: -100, wantRotation: -5, wantOpacity: 0.8, wantIndicator: Reject, wantBadge: 1},
		{offset: 250, wantRotation: 12.5, wantOpacity: 0.5, wantIndicator: Accept, wantBadge: 1},
		{offset: 1000, wantRotation: 50, wantOpacity: 0.5, wantIndicator: Accept, wantBadge: 1},
		{offset: -1000, wantRotation: -50, wantOpacity: 0.5, wantIndicator: Reject, wantBadge: 1},
	}

	for _, tt := range tests {
		hint := cfg.HintFor(tt.offset)
		if hint.OffsetX != tt.offset {
			t.Fatalf("offset %v: OffsetX = %v", tt.offset, hint.OffsetX)
		}
		if !approxEqual(hint.RotationDeg, tt.wantRotation) {
			t.Fatalf("offset %v: rotation = %v, want %v", tt.offset, hint.RotationDeg, tt.wantRotation)
		}
		if !approxEqual(hint.Opacity, tt.wantOpacity) {
			t.Fatalf("offset %v: opacity = %v, want %v", tt.offset, hint.Opacity, tt.wantOpacity)
		}
		if hint.Indicator != tt.wantIndicator || !approxEqual(hint.IndicatorOpacity, tt.wantBadge) {
			t.Fatalf("offset %v: indicator = %v/%v, want %v/%v", tt.offset, hint.Indicator, hint.IndicatorOpacity, tt.wantIndicator, tt.wantBadge)
		}
	}
}

func TestDecideThresholdIsExclusive(t *testing.T) {
	cfg := DefaultConfig()

	cases := map[float64]Direction{
		100:      None,
		-100:     None,
		100.0001: Accept,
		-100.001: Reject,
		0:        None,
		4000:     Accept,
	}
	for offset, want := range cases {
		if got := cfg.Decide(offset); got != want {
			t.Fatalf("Decide(%v) = %v, want %v", offset, got, want)
		}
	}
}

func TestConfigDefaultsFillZeroValues(t *testing.T) {
	cfg := Config{RotationPerPixel: -1}.withDefaults()
	if cfg != DefaultConfig() {
		t.Fatalf("withDefaults = %+v, want %+v", cfg, DefaultConfig())
	}
	if cfg.SettleDelay != 300*time.Millisecond {
		t.Fatalf("zero settle delay = %v, want 300ms", cfg.SettleDelay)
	}
}

func TestConfigImmediateSettle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SettleDelay = Immediate
	if got := cfg.withDefaults().SettleDelay; got != 0 {
		t.Fatalf("Immediate settle delay = %v, want 0", got)
	}

	interpreter := New(cfg, nil)
	commit, err := interpreter.Force(Accept)
	if err != nil {
		t.Fatalf("Force failed: %v", err)
	}
	select {
	case <-commit.Done():
	case <-time.After(time.Second):
		t.Fatalf("immediate commit was not delivered")
	}
}

func TestConfigZeroRotationDisablesTilt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RotationPerPixel = 0
	hint := cfg.withDefaults().HintFor(250)
	if hint.RotationDeg != 0 {
		t.Fatalf("rotation = %v, want no tilt", hint.RotationDeg)
	}
	if hint.Indicator != Accept || hint.Opacity != 0.5 {
		t.Fatalf("other hint fields changed: %+v", hint)
	}

	nan := Config{RotationPerPixel: math.NaN()}.withDefaults()
	if nan.RotationPerPixel != DefaultConfig().RotationPerPixel {
		t.Fatalf("NaN rotation = %v, want default", nan.RotationPerPixel)
	}
}

func TestDirectionString(t *testing.T) {
	if Accept.String() != "accept" || Reject.String() != "reject" || None.String() != "none" {
		t.Fatalf("unexpected direction names: %s %s %s", Accept, Reject, None)
	}
	if !Accept.Accepted() || Reject.Accepted() {
		t.Fatalf("Accepted() mismatch")
	}
}

func approxEqual(a, b float64) bool {
	const epsilon = 1e-9
	diff := a - b
	return diff < epsilon && diff > -epsilon
}
