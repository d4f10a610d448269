package router

import (
	"errors"
	"strings"
	"testing"

	"routerd/pkg/types"
)

func TestRoute_Table(t *testing.T) {
	r := New(0, false)
	long := strings.Repeat("x", 200)
	cases := []struct {
		name   string
		prompt string
		mode   Mode
		kind   types.Kind
		reason Reason
	}{
		{"short auto", "What is Apple?", ModeAuto, types.KindSmall, ReasonSmallOK},
		{"long auto", long, ModeAuto, types.KindLarge, ReasonPromptLong},
		{"empty auto", "", ModeAuto, types.KindSmall, ReasonSmallOK},
		{"just below", strings.Repeat("a", DefaultThreshold-1), ModeAuto, types.KindSmall, ReasonSmallOK},
		{"at threshold", strings.Repeat("a", DefaultThreshold), ModeAuto, types.KindLarge, ReasonPromptLong},
		{"forced large short", "test", ModeLarge, types.KindLarge, ReasonForcedLarge},
		{"forced small long", long, ModeSmall, types.KindSmall, ReasonForcedSmall},
		{"forced large long", long, ModeLarge, types.KindLarge, ReasonForcedLarge},
		{"forced small empty", "", ModeSmall, types.KindSmall, ReasonForcedSmall},
	}
	for _, c := range cases {
		got := r.Route(c.prompt, c.mode)
		if got.Kind != c.kind || got.Reason != c.reason {
			t.Fatalf("%s: got %+v, want kind=%s reason=%s", c.name, got, c.kind, c.reason)
		}
	}
}

func TestRoute_CountsCharactersNotBytes(t *testing.T) {
	r := New(4, false)
	// 3 runes, 9 bytes
	if d := r.Route("äöü", ModeAuto); d.Kind != types.KindSmall {
		t.Fatalf("expected small for 3-char prompt, got %+v", d)
	}
	if d := r.Route("äöüß", ModeAuto); d.Kind != types.KindLarge {
		t.Fatalf("expected large for 4-char prompt, got %+v", d)
	}
}

func TestRoute_AutoBoundarySweep(t *testing.T) {
	r := New(0, false)
	for n := 0; n < 2*DefaultThreshold; n += 7 {
		d := r.Route(strings.Repeat("y", n), ModeAuto)
		wantLarge := n >= DefaultThreshold
		if (d.Kind == types.KindLarge) != wantLarge {
			t.Fatalf("len=%d: got %+v", n, d)
		}
	}
}

func TestNew_DefaultsThreshold(t *testing.T) {
	if got := New(-3, false).Threshold(); got != DefaultThreshold {
		t.Fatalf("threshold=%d", got)
	}
	if got := New(10, false).Threshold(); got != 10 {
		t.Fatalf("threshold=%d", got)
	}
}

func TestParseMode(t *testing.T) {
	r := New(0, false)
	for in, want := range map[string]Mode{
		"":      ModeAuto,
		"auto":  ModeAuto,
		"small": ModeSmall,
		"large": ModeLarge,
	} {
		got, err := r.ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"medium", "LARGE", " small ", "Auto"} {
		_, err := r.ParseMode(in)
		var ume *UnknownModeError
		if !errors.As(err, &ume) || ume.Mode != in {
			t.Fatalf("ParseMode(%q): expected UnknownModeError, got %v", in, err)
		}
	}
}

func TestParseMode_PermissiveFallsBackToAuto(t *testing.T) {
	r := New(0, true)
	m, err := r.ParseMode("medium")
	if err != nil || m != ModeAuto {
		t.Fatalf("got %q, %v", m, err)
	}
	if d := r.Route("hi", m); d.Reason != ReasonSmallOK {
		t.Fatalf("got %+v", d)
	}
	// near misses of the forced modes route by length, not by force
	for _, in := range []string{"LARGE", " large", "Small"} {
		m, err := r.ParseMode(in)
		if err != nil || m != ModeAuto {
			t.Fatalf("ParseMode(%q) = %q, %v; want auto", in, m, err)
		}
		if d := r.Route("hi", m); d.Reason != ReasonSmallOK {
			t.Fatalf("%q: got %+v", in, d)
		}
	}
}
