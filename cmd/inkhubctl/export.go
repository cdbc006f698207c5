package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/export"
)

type exportCmd struct {
	Resource string   `required:"" short:"r" help:"Resource code (shopify-products, shopify-orders, pinterest-pins, design-library)."`
	Input    string   `required:"" short:"i" type:"existingfile" help:"JSON or YAML file with the entity list."`
	Query    string   `short:"q" type:"existingfile" help:"YAML query state (search, filters, sort)."`
	Format   string   `short:"f" default:"csv" enum:"csv,json,pdf" help:"Output format."`
	Fields   []string `help:"Fields to include (comma separated or repeated)."`
	Out      string   `short:"o" type:"path" help:"Output file or directory (defaults to the generated filename in the working directory)."`
}

func (cmd *exportCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	items, err := loadEntities(cmd.Input)
	if err != nil {
		return err
	}
	query, err := loadQuery(cmd.Query)
	if err != nil {
		return err
	}
	if err := svc.Seed(rt.ctx, cmd.Resource, items); err != nil {
		return err
	}
	if _, err := svc.Query(rt.ctx, admin.QueryRequest{Resource: cmd.Resource, Query: query}); err != nil {
		return err
	}
	format, err := export.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	art, err := svc.Export(rt.ctx, admin.ExportRequest{
		Resource: cmd.Resource,
		Format:   format,
		Fields:   splitList(cmd.Fields),
		Scope:    admin.ScopeFiltered,
	})
	if errors.Is(err, export.ErrComingSoon) {
		color.New(color.FgYellow).Fprintln(rt.out, art.Notice)
		return nil
	}
	if err != nil {
		return err
	}

	path := art.Filename
	if cmd.Out != "" {
		path = cmd.Out
		if info, statErr := os.Stat(cmd.Out); statErr == nil && info.IsDir() {
			path = filepath.Join(cmd.Out, art.Filename)
		}
	}
	if err := os.WriteFile(path, art.Body, 0o644); err != nil {
		return fmt.Errorf("inkhubctl: write export: %w", err)
	}
	color.New(color.FgGreen).Fprintf(rt.out, "✓ Exported %s to %s\n", cmd.Resource, path)
	return nil
}
