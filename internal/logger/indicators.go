package logger

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// IndicatorConfig describes a symbol printed in front of a log head.
type IndicatorConfig struct {
	Key    string `json:"key" yaml:"key" mapstructure:"key"`
	Level  Level  `json:"level" yaml:"level" mapstructure:"level"`
	Color  string `json:"color" yaml:"color" mapstructure:"color"`
	Symbol string `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
}

// Indicator is a registered IndicatorConfig with its rendered symbol.
type Indicator struct {
	IndicatorConfig
	Str string
}

// Base indicator keys. They can be updated but never deleted or re-keyed.
const (
	IndicatorNeutral = "neutral"
	IndicatorSuccess = "success"
	IndicatorInfo    = "info"
	IndicatorWarn    = "warn"
	IndicatorError   = "error"
)

var baseIndicators = []IndicatorConfig{
	{Key: IndicatorNeutral, Level: LevelLog, Color: "#696969", Symbol: "○"},
	{Key: IndicatorSuccess, Level: LevelLog, Color: "#006500", Symbol: "✔"},
	{Key: IndicatorInfo, Level: LevelInfo, Color: "#057ddf", Symbol: "ⓘ"},
	{Key: IndicatorWarn, Level: LevelWarn, Color: "#ffff00", Symbol: "⚠"},
	{Key: IndicatorError, Level: LevelError, Color: "#ff5555", Symbol: "✘"},
}

func isBaseIndicator(key string) bool {
	for _, b := range baseIndicators {
		if b.Key == key {
			return true
		}
	}
	return false
}

// Indicators is the catalog of indicators known to a Logger. Keys keep
// their insertion order so ByLevel is deterministic.
type Indicators struct {
	mu       sync.RWMutex
	renderer *lipgloss.Renderer
	order    []string
	items    map[string]Indicator
}

// NewIndicators returns a catalog holding the base indicators followed by
// extra.
func NewIndicators(r *lipgloss.Renderer, extra ...IndicatorConfig) (*Indicators, error) {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	in := &Indicators{renderer: r, items: map[string]Indicator{}}
	all := append(append([]IndicatorConfig{}, baseIndicators...), extra...)
	if err := in.Create(all...); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *Indicators) render(c IndicatorConfig) Indicator {
	style := in.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Color))
	return Indicator{IndicatorConfig: c, Str: style.Render(c.Symbol)}
}

// Create registers each config. Nothing is registered if any key is
// already taken.
func (in *Indicators) Create(cfgs ...IndicatorConfig) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	seen := map[string]bool{}
	for _, c := range cfgs {
		if c.Key == "" {
			return fmt.Errorf("indicator key cannot be empty")
		}
		if _, ok := in.items[c.Key]; ok || seen[c.Key] {
			return fmt.Errorf("%s is already a registered indicator", c.Key)
		}
		if _, err := ParseLevel(string(c.Level)); err != nil {
			return fmt.Errorf("indicator %s: %w", c.Key, err)
		}
		seen[c.Key] = true
	}
	for _, c := range cfgs {
		in.items[c.Key] = in.render(c)
		in.order = append(in.order, c.Key)
	}
	return nil
}

func notRegistered(target string) error {
	return fmt.Errorf("%s not found in registered indicators", target)
}

// Read returns the indicator registered under key.
func (in *Indicators) Read(key string) (Indicator, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	i, ok := in.items[key]
	if !ok {
		return Indicator{}, notRegistered(key)
	}
	return i, nil
}

// All returns every indicator in insertion order.
func (in *Indicators) All() []Indicator {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]Indicator, 0, len(in.order))
	for _, k := range in.order {
		out = append(out, in.items[k])
	}
	return out
}

// ByLevel returns the first registered indicator of level.
func (in *Indicators) ByLevel(level Level) (Indicator, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, k := range in.order {
		if i := in.items[k]; i.Level == level {
			return i, nil
		}
	}
	return Indicator{}, notRegistered(string(level))
}

// Update merges the non-empty fields of cfg into the indicator at key.
func (in *Indicators) Update(key string, cfg IndicatorConfig) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	cur, ok := in.items[key]
	if !ok {
		return notRegistered(key)
	}
	if cfg.Key != "" && cfg.Key != key {
		if isBaseIndicator(key) {
			return fmt.Errorf("cannot overwrite the key of a base indicator")
		}
		if _, taken := in.items[cfg.Key]; taken {
			return fmt.Errorf("%s is already a registered indicator", cfg.Key)
		}
	}
	merged := cur.IndicatorConfig
	if cfg.Key != "" {
		merged.Key = cfg.Key
	}
	if cfg.Level != "" {
		if _, err := ParseLevel(string(cfg.Level)); err != nil {
			return fmt.Errorf("indicator %s: %w", key, err)
		}
		merged.Level = cfg.Level
	}
	if cfg.Color != "" {
		merged.Color = cfg.Color
	}
	if cfg.Symbol != "" {
		merged.Symbol = cfg.Symbol
	}
	if merged.Key != key {
		delete(in.items, key)
		for i, k := range in.order {
			if k == key {
				in.order[i] = merged.Key
			}
		}
	}
	in.items[merged.Key] = in.render(merged)
	return nil
}

// Delete removes a custom indicator.
func (in *Indicators) Delete(key string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.items[key]; !ok {
		return notRegistered(key)
	}
	if isBaseIndicator(key) {
		return fmt.Errorf("cannot delete a base indicator; update it or add a custom one")
	}
	delete(in.items, key)
	for i, k := range in.order {
		if k == key {
			in.order = append(in.order[:i], in.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset removes every indicator, base ones included.
func (in *Indicators) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.order = nil
	in.items = map[string]Indicator{}
}

// Keys returns the registered keys in insertion order.
func (in *Indicators) Keys() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]string(nil), in.order...)
}
