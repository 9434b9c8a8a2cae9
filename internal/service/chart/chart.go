// Package chart renders country series as Plotly figures. Each renderer
// takes an already calculated series, so one calculation can feed both.
package chart

import (
	"fmt"
	"time"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/domain/dto"
)

// Cumulative renders active and confirmed cases as two lines.
func Cumulative(country string, days []domain.CountryDay) dto.Figure {
	x := dates(days)
	active := make([]*float64, len(days))
	confirmed := make([]*float64, len(days))
	for i, d := range days {
		active[i] = floatPtr(d.Active)
		c := float64(d.Confirmed)
		confirmed[i] = &c
	}

	return dto.Figure{
		Data: []dto.Trace{
			{Type: "scatter", Mode: "lines", Name: "active cases", X: x, Y: active},
			{Type: "scatter", Mode: "lines", Name: "confirmed cases", X: x, Y: confirmed},
		},
		Layout: layout(fmt.Sprintf("Active cases of COVID-19 for %s", country), "Population"),
	}
}

// NewCases renders daily new cases as bars.
func NewCases(country string, days []domain.CountryDay) dto.Figure {
	y := make([]*float64, len(days))
	for i, d := range days {
		y[i] = floatPtr(d.NewCases)
	}

	return dto.Figure{
		Data: []dto.Trace{
			{Type: "bar", Name: "new cases", X: dates(days), Y: y},
		},
		Layout: layout(fmt.Sprintf("New cases of COVID-19 for %s", country), "New Cases"),
	}
}

// Empty is the figure shown when a series cannot be computed.
func Empty(title, message string) dto.Figure {
	l := layout(title, "")
	l.Annotations = []dto.Annotation{{
		Text:      message,
		XRef:      "paper",
		YRef:      "paper",
		X:         0.5,
		Y:         0.5,
		ShowArrow: false,
	}}
	return dto.Figure{Data: []dto.Trace{}, Layout: l}
}

func layout(title, yTitle string) dto.Layout {
	return dto.Layout{
		Title: dto.Title{Text: title},
		XAxis: dto.Axis{Title: dto.Title{Text: "Date"}},
		YAxis: dto.Axis{Title: dto.Title{Text: yTitle}},
	}
}

func dates(days []domain.CountryDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date.Format(time.DateOnly)
	}
	return out
}

func floatPtr(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
