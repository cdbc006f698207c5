package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

type scaffoldCmd struct {
	Name         string   `required:"" help:"Display name of the resource (e.g. \"Etsy Listings\")."`
	Code         string   `help:"Resource code (defaults to the kebab-cased name)."`
	Section      string   `help:"Navigation section (defaults to the first code segment)."`
	Endpoint     string   `help:"Source endpoint path (defaults to /<code>)."`
	ItemsKey     string   `help:"Array key inside object responses."`
	Column       []string `help:"Column as key[:type[:flags]], flags joined by '+' (currency, filter, sort, hidden). Repeatable."`
	ManifestPath string   `required:"" name:"manifest" type:"path" help:"Path to the resource manifest YAML file to update."`
	Overwrite    bool     `help:"Replace an existing resource with the same code."`
}

func (cmd *scaffoldCmd) Run(rt *runtime) error {
	res, err := cmd.resource()
	if err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("inkhubctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	replaced := false
	for i := range doc.Resources {
		if doc.Resources[i].Code != res.Code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("inkhubctl: manifest already defines resource %s (use --overwrite to replace)", res.Code)
		}
		doc.Resources[i] = res
		replaced = true
	}
	if !replaced {
		doc.Resources = append(doc.Resources, res)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(rt.out, "✓ Added %s to %s (%d columns)\n", res.Code, manifestPath, len(res.Schema.Columns))
	return nil
}

func (cmd *scaffoldCmd) resource() (admin.Resource, error) {
	code := cmd.Code
	if code == "" {
		code = strcase.ToKebab(cmd.Name)
	}
	if code == "" {
		return admin.Resource{}, errors.New("inkhubctl: resource code is empty")
	}
	section := cmd.Section
	if section == "" {
		section = strings.SplitN(code, "-", 2)[0]
	}
	endpoint := cmd.Endpoint
	if endpoint == "" {
		endpoint = "/" + code
	}

	columns := []datatable.Column{{Key: datatable.IDField, Label: "ID", Type: datatable.ColumnText, Hidden: true}}
	for _, raw := range cmd.Column {
		col, err := parseColumn(raw)
		if err != nil {
			return admin.Resource{}, err
		}
		if col.Key == datatable.IDField {
			continue
		}
		columns = append(columns, col)
	}

	return admin.Resource{
		Code:    code,
		Name:    cmd.Name,
		Section: section,
		Schema:  datatable.NewSchema(columns...),
		KPIs: []metrics.KPIDefinition{{
			Key:       "total-" + code,
			Label:     "Total " + cmd.Name,
			Operation: metrics.OpCount,
		}},
		Source: admin.SourceConfig{Endpoint: endpoint, ItemsKey: cmd.ItemsKey},
	}, nil
}

// parseColumn reads key[:type[:flags]].
func parseColumn(raw string) (datatable.Column, error) {
	parts := strings.Split(raw, ":")
	key := strcase.ToCamel(strings.TrimSpace(parts[0]))
	if key == "" {
		return datatable.Column{}, fmt.Errorf("inkhubctl: column %q has no key", raw)
	}
	col := datatable.Column{Key: key, Type: datatable.ColumnText}
	if len(parts) > 1 && parts[1] != "" {
		col.Type = datatable.ColumnType(strings.ToLower(parts[1]))
		switch col.Type {
		case datatable.ColumnText, datatable.ColumnNumber, datatable.ColumnDate,
			datatable.ColumnSelect, datatable.ColumnMultiSelect, datatable.ColumnBoolean:
		default:
			return datatable.Column{}, fmt.Errorf("inkhubctl: column %s has unknown type %q", key, parts[1])
		}
	}
	if len(parts) > 2 {
		for _, flag := range strings.Split(parts[2], "+") {
			switch strings.TrimSpace(flag) {
			case "currency":
				col.Currency = true
			case "filter":
				col.Filterable = true
			case "sort":
				col.Sortable = true
			case "hidden":
				col.Hidden = true
			case "":
			default:
				return datatable.Column{}, fmt.Errorf("inkhubctl: column %s has unknown flag %q", key, flag)
			}
		}
	}
	return col, nil
}

func loadOrInitManifest(path string) (*admin.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &admin.ManifestDocument{
				Version:   admin.ManifestVersion,
				Resources: []admin.Resource{},
				Source:    path,
			}, nil
		}
		return nil, fmt.Errorf("inkhubctl: stat manifest: %w", err)
	}
	return admin.ReadManifest(path)
}

func writeManifest(path string, doc *admin.ManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("inkhubctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("inkhubctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("inkhubctl: write manifest: %w", err)
	}
	return nil
}
