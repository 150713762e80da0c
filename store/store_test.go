package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"encanto-system/models"
)

func sampleEvent() models.Event {
	return models.Event{
		ID:          "ev1",
		Title:       "Taller de Rosas",
		Description: "Arreglos florales para principiantes",
		Location:    "Sala 2",
		StartDate:   time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC),
		Category:    models.CategoryTaller,
		Status:      models.StatusProximo,
	}
}

func TestFilter_Matches(t *testing.T) {
	ev := sampleEvent()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"category match", Filter{Category: "taller"}, true},
		{"category mismatch", Filter{Category: "social"}, false},
		{"category all passes", Filter{Category: "all"}, true},
		{"status match", Filter{Status: "proximo"}, true},
		{"status mismatch", Filter{Status: "finalizado"}, false},
		{"status all passes", Filter{Status: "all"}, true},
		{"search title case-insensitive", Filter{Search: "rosas"}, true},
		{"search description", Filter{Search: "florales"}, true},
		{"search location", Filter{Search: "sala"}, true},
		{"search no match", Filter{Search: "Reunión"}, false},
		{"start bound inclusive", Filter{StartDate: ev.StartDate}, true},
		{"start bound excludes earlier", Filter{StartDate: ev.StartDate.Add(time.Minute)}, false},
		{"end bound inclusive", Filter{EndDate: ev.EndDate}, true},
		{"end bound excludes later", Filter{EndDate: ev.EndDate.Add(-time.Minute)}, false},
		{"combined", Filter{Category: "taller", Status: "proximo", Search: "rosas"}, true},
		{"combined one misses", Filter{Category: "taller", Status: "finalizado"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(ev))
		})
	}
}

func TestFilter_Matches_Combination(t *testing.T) {
	a := sampleEvent()
	b := models.Event{
		ID:        "ev2",
		Title:     "Reunión",
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
		Category:  models.CategorySocial,
		Status:    models.StatusProximo,
	}

	match := func(f Filter) []string {
		var out []string
		for _, ev := range []models.Event{a, b} {
			if f.Matches(ev) {
				out = append(out, ev.ID)
			}
		}
		return out
	}

	assert.Equal(t, []string{"ev1"}, match(Filter{Search: "rosas"}))
	assert.Equal(t, []string{"ev2"}, match(Filter{Category: "social"}))
	assert.Empty(t, match(Filter{Search: "rosas", Category: "social"}))
}

func TestBuildFilterExpr_Empty(t *testing.T) {
	expr, params := buildFilterExpr(Filter{})
	assert.Empty(t, expr)
	assert.Empty(t, params)
}

func TestBuildFilterExpr_AllIgnored(t *testing.T) {
	expr, _ := buildFilterExpr(Filter{Category: "all", Status: "all"})
	assert.Empty(t, expr)
}

func TestBuildFilterExpr_Full(t *testing.T) {
	f := Filter{
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Category:  "taller",
		Status:    "proximo",
		Search:    "rosas",
	}

	expr, params := buildFilterExpr(f)

	assert.Equal(t,
		"start_date >= {:from} && end_date <= {:until} && category = {:category} && status = {:status} && "+
			"(title ~ {:search} || description ~ {:search} || location ~ {:search})",
		expr)
	assert.Equal(t, "2026-09-01 00:00:00.000Z", params["from"])
	assert.Equal(t, "2026-09-30 00:00:00.000Z", params["until"])
	assert.Equal(t, "taller", params["category"])
	assert.Equal(t, "proximo", params["status"])
	assert.Equal(t, "rosas", params["search"])
}

func TestBuildFilterExpr_SearchOnly(t *testing.T) {
	expr, params := buildFilterExpr(Filter{Search: "feria"})
	assert.Equal(t, "(title ~ {:search} || description ~ {:search} || location ~ {:search})", expr)
	assert.Equal(t, "feria", params["search"])
}
