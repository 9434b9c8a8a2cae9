package controller

import (
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/ougirez/covid-dashboard/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SeriesService is the calculator the handlers read from.
type SeriesService interface {
	Countries(ctx context.Context) ([]string, error)
	Calculate(ctx context.Context, country string) ([]domain.CountryDay, error)
}

type Controller struct {
	service   SeriesService
	templates *template.Template
}

func NewController(service SeriesService) (*Controller, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Controller{service: service, templates: tmpl}, nil
}
