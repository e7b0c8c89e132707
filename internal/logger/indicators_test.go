package logger

import (
	"strings"
	"testing"
)

func TestBaseIndicatorsRegistered(t *testing.T) {
	in, err := NewIndicators(nil)
	if err != nil {
		t.Fatalf("NewIndicators: %v", err)
	}
	want := []string{"neutral", "success", "info", "warn", "error"}
	got := in.Keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	i, err := in.ByLevel(LevelLog)
	if err != nil || i.Key != IndicatorNeutral {
		t.Fatalf("ByLevel(log) = %+v, %v", i, err)
	}
}

func TestIndicatorCreateDuplicate(t *testing.T) {
	in, err := NewIndicators(nil, IndicatorConfig{Key: "rocket", Level: LevelInfo, Color: "#ffffff", Symbol: "^"})
	if err != nil {
		t.Fatalf("NewIndicators: %v", err)
	}
	err = in.Create(IndicatorConfig{Key: "rocket", Level: LevelInfo, Color: "#ffffff", Symbol: "^"})
	if err == nil || !strings.Contains(err.Error(), "already a registered indicator") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if len(in.Keys()) != 6 {
		t.Fatalf("expected 6 indicators, got %d", len(in.Keys()))
	}
}

func TestIndicatorReadMissing(t *testing.T) {
	in, _ := NewIndicators(nil)
	if _, err := in.Read("nope"); err == nil || !strings.Contains(err.Error(), "nope not found in registered indicators") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndicatorBaseProtection(t *testing.T) {
	in, _ := NewIndicators(nil)
	if err := in.Delete(IndicatorWarn); err == nil {
		t.Fatalf("expected base indicator delete to fail")
	}
	if err := in.Update(IndicatorWarn, IndicatorConfig{Key: "caution"}); err == nil {
		t.Fatalf("expected base indicator re-key to fail")
	}
	if err := in.Update(IndicatorWarn, IndicatorConfig{Symbol: "!"}); err != nil {
		t.Fatalf("updating a base indicator symbol: %v", err)
	}
	i, _ := in.Read(IndicatorWarn)
	if i.Symbol != "!" || i.Level != LevelWarn {
		t.Fatalf("unexpected indicator after update: %+v", i.IndicatorConfig)
	}
}

func TestIndicatorCustomUpdateAndDelete(t *testing.T) {
	in, _ := NewIndicators(nil, IndicatorConfig{Key: "bolt", Level: LevelLog, Color: "#ffff00", Symbol: "z"})
	if err := in.Update("bolt", IndicatorConfig{Key: "zap"}); err != nil {
		t.Fatalf("rename custom: %v", err)
	}
	if _, err := in.Read("bolt"); err == nil {
		t.Fatalf("old key should be gone")
	}
	if err := in.Delete("zap"); err != nil {
		t.Fatalf("delete custom: %v", err)
	}
	if len(in.Keys()) != 5 {
		t.Fatalf("expected base indicators only, got %v", in.Keys())
	}
	in.Reset()
	if len(in.All()) != 0 {
		t.Fatalf("reset should clear everything")
	}
}
