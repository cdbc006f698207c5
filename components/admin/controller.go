package admin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-inkhub/components/cards"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/export"
	"github.com/goliatone/go-inkhub/components/metrics"
)

// PageService is the subset of Service the controller renders from.
type PageService interface {
	Resources() []Resource
	Page(ctx context.Context, code string) (PageResult, error)
	KPIs(ctx context.Context, code string) ([]KPICard, error)
	Cards(ctx context.Context, code string) ([]cards.Result, error)
}

// ControllerOptions wires the shell controller.
type ControllerOptions struct {
	Service  PageService
	Renderer Renderer
	Template string
	BasePath string
}

// Controller renders the tabbed admin shell.
type Controller struct {
	service  PageService
	renderer Renderer
	template string
	basePath string
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.BasePath == "" {
		opts.BasePath = "/admin"
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		basePath: opts.BasePath,
	}
}

// RenderTemplate renders the shell of resource code into out.
func (c *Controller) RenderTemplate(ctx context.Context, code string, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("admin: renderer not configured")
	}
	payload, err := c.ShellPayload(ctx, code)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(c.template, payload, out); err != nil {
		return fmt.Errorf("admin: render %s: %w", c.template, err)
	}
	return nil
}

// ShellPayload builds the template data of the shell page.
func (c *Controller) ShellPayload(ctx context.Context, code string) (map[string]any, error) {
	if c.service == nil {
		return nil, errors.New("admin: service not configured")
	}
	page, err := c.service.Page(ctx, code)
	if err != nil {
		return nil, err
	}
	kpis, err := c.service.KPIs(ctx, code)
	if err != nil {
		return nil, err
	}
	results, err := c.service.Cards(ctx, code)
	if err != nil {
		return nil, err
	}

	columns := make([]map[string]any, len(page.Columns))
	for i, col := range page.Columns {
		sorted := col.Key == page.View.SortColumn
		direction := "none"
		if sorted {
			direction = "ascending"
			if page.View.SortDirection == datatable.SortDesc {
				direction = "descending"
			}
		}
		columns[i] = map[string]any{
			"key":       col.Key,
			"label":     col.DisplayLabel(),
			"sorted":    sorted,
			"direction": direction,
		}
	}

	selected := map[string]struct{}{}
	for _, id := range page.View.SelectedIDs {
		selected[id] = struct{}{}
	}
	rows := make([]map[string]any, len(page.View.Items))
	for i, e := range page.View.Items {
		cells := make([]string, len(page.Columns))
		for j, col := range page.Columns {
			cells[j] = DisplayCell(col, e.Get(col.Key))
		}
		_, isSelected := selected[e.ID()]
		rows[i] = map[string]any{"id": e.ID(), "selected": isSelected, "cells": cells}
	}

	var kpiPayload []map[string]any
	for _, k := range kpis {
		if !k.Visible {
			continue
		}
		kpiPayload = append(kpiPayload, map[string]any{
			"key":     k.Key,
			"label":   k.Label,
			"display": k.Display,
			"change":  k.Change,
			"trend":   string(k.Trend),
			"color":   k.Color,
		})
	}
	var cardPayload []map[string]any
	for _, r := range results {
		if !r.Card.IsVisible {
			continue
		}
		cardPayload = append(cardPayload, map[string]any{
			"id":      r.Card.ID,
			"title":   r.Card.Title,
			"display": r.Display,
			"color":   r.Card.Color,
			"error":   r.FormulaError != "",
		})
	}

	return map[string]any{
		"base_path":         c.basePath,
		"sections":          c.navigation(code),
		"resource":          map[string]any{"code": page.Resource.Code, "name": page.Resource.Name},
		"columns":           columns,
		"column_span":       len(columns) + 1,
		"rows":              rows,
		"all_page_selected": page.View.AllPageSelected,
		"summary":           Summary(page.View.Pagination),
		"pagination": map[string]any{
			"current":     page.View.Pagination.CurrentPage,
			"total_pages": page.View.Pagination.TotalPages,
			"total_items": page.View.Pagination.TotalItems,
		},
		"kpis":  kpiPayload,
		"cards": cardPayload,
	}, nil
}

func (c *Controller) navigation(active string) []map[string]any {
	reg := NewEmptyRegistry()
	for _, res := range c.service.Resources() {
		_ = reg.Register(res)
	}
	var out []map[string]any
	for _, section := range reg.Sections() {
		tabs := make([]map[string]any, len(section.Resources))
		for i, res := range section.Resources {
			tabs[i] = map[string]any{"code": res.Code, "label": res.TabLabel(), "active": res.Code == active}
		}
		out = append(out, map[string]any{"code": section.Code, "label": section.Label, "tabs": tabs})
	}
	return out
}

// Summary renders "Showing x-y of n" for a page window.
func Summary(p datatable.Pagination) string {
	if p.TotalItems == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d-%d of %d", p.StartIndex, p.EndIndex, p.TotalItems)
}

// DisplayCell formats one value for the table body.
func DisplayCell(col datatable.Column, v any) string {
	if v == nil || v == "" {
		return ""
	}
	switch {
	case col.Currency:
		if n, ok := datatable.AsNumber(v); ok {
			return metrics.Format(n, metrics.FormatOptions{Currency: true})
		}
	case col.Type == datatable.ColumnNumber:
		if n, ok := datatable.AsNumber(v); ok {
			return metrics.Format(n, metrics.FormatOptions{})
		}
	case col.Type == datatable.ColumnBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	}
	return export.Cell(v)
}
