// Package filter partitions a fleet snapshot by grade, car type and free text.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/fleethealth/core/model"
)

// All disables the grade or car type criterion.
const All = "all"

// State is the user's current filter selection. Empty Grade or CarType
// behave like All.
type State struct {
	Grade   string `json:"grade"`
	CarType string `json:"car_type"`
	Search  string `json:"search"`
}

// Default returns the unfiltered state.
func Default() State { return State{Grade: All, CarType: All} }

func isAll(s string) bool { return s == "" || s == All }

// Matches reports whether v passes every criterion of s.
func (s State) Matches(v model.Vehicle) bool {
	if !isAll(s.Grade) && string(v.Grade) != s.Grade {
		return false
	}
	if !isAll(s.CarType) && v.CarType != s.CarType {
		return false
	}
	if s.Search == "" {
		return true
	}
	needle := strings.ToLower(s.Search)
	if strings.Contains(strings.ToLower(v.ID), needle) {
		return true
	}
	return v.CarType != "" && strings.Contains(strings.ToLower(v.CarType), needle)
}

// Query returns the server side scope of s. Search is client only and is
// never part of the query.
func (s State) Query() model.StatsQuery {
	var q model.StatsQuery
	if !isAll(s.Grade) {
		q.Grade = s.Grade
	}
	if !isAll(s.CarType) {
		q.CarType = s.CarType
	}
	return q
}

// Apply returns the vehicles matching s in input order. The result is never
// nil and shares no backing array with vehicles.
func Apply(vehicles []model.Vehicle, s State) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if s.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// CarTypes returns the sorted distinct non-empty car types of vehicles.
func CarTypes(vehicles []model.Vehicle) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range vehicles {
		if v.CarType == "" {
			continue
		}
		if _, ok := seen[v.CarType]; ok {
			continue
		}
		seen[v.CarType] = struct{}{}
		out = append(out, v.CarType)
	}
	sort.Strings(out)
	return out
}

// ParseGrade validates a grade selector. An empty string selects All.
func ParseGrade(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if isAll(s) {
		return All, nil
	}
	if !model.Grade(s).Valid() {
		return "", fmt.Errorf("invalid grade %q", s)
	}
	return s, nil
}
