package presets

import "strings"

// FuzzyMatch returns true if query fuzzy-matches target.
// Matching is case-insensitive and succeeds on substring match or if
// the query characters appear as a subsequence in the target.
func FuzzyMatch(target, query string) bool {
	if query == "" {
		return true
	}
	t := strings.ToLower(target)
	q := strings.ToLower(query)
	if strings.Contains(t, q) {
		return true
	}
	qr := []rune(q)
	i := 0
	for _, ch := range t {
		if i < len(qr) && qr[i] == ch {
			i++
			if i >= len(qr) {
				return true
			}
		}
	}
	return false
}

func fuzzyMatchesPreset(p *Preset, query string) bool {
	if FuzzyMatch(p.Name, query) {
		return true
	}
	if p.Description.Valid && FuzzyMatch(p.Description.String, query) {
		return true
	}
	for _, s := range p.Strs() {
		if FuzzyMatch(s, query) {
			return true
		}
	}
	return false
}

// FuzzySearch loads every preset with its commands and keeps those that
// fuzzy-match query.
func (r *Repository) FuzzySearch(query string) ([]Preset, error) {
	list, err := r.List()
	if err != nil {
		return nil, err
	}
	var out []Preset
	for _, s := range list {
		p, err := r.Get(s.Name)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if fuzzyMatchesPreset(p, query) {
			out = append(out, *p)
		}
	}
	return out, nil
}
