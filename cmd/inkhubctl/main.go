package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/pkg/config"
)

type cli struct {
	Config string `short:"c" type:"path" help:"Path to inkhub.yaml (store, manifest and locale)."`

	Export    exportCmd    `cmd:"" help:"Filter a data file and export it as CSV or JSON."`
	Aggregate aggregateCmd `cmd:"" help:"Aggregate one field of a data file."`
	KPIs      kpisCmd      `cmd:"" name:"kpis" help:"Compute the KPI cards of a resource over a data file."`
	Cards     cardsCmd     `cmd:"" help:"Manage the custom cards stored for a resource."`
	Scaffold  scaffoldCmd  `cmd:"" help:"Add a resource descriptor to a manifest."`
}

// runtime carries what every subcommand needs.
type runtime struct {
	ctx        context.Context
	out        io.Writer
	configPath string
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Description("INKHUB admin toolkit: exports, aggregates, KPIs and custom cards."),
		kong.UsageOnError(),
	)
	rt := &runtime{ctx: context.Background(), out: os.Stdout, configPath: args.Config}
	kctx.FatalIfErrorf(kctx.Run(rt))
}

// service builds an admin service from the configuration. The caller must
// invoke the returned release func.
func (rt *runtime) service() (*admin.Service, func() error, error) {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return nil, nil, err
	}
	registry := admin.NewRegistry()
	if cfg.Manifest != "" {
		if _, err := registry.LoadManifestFile(cfg.Manifest); err != nil {
			return nil, nil, err
		}
	}
	store, release, err := cfg.Store.Open(rt.ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := admin.NewService(admin.Options{
		Registry: registry,
		Store:    store,
		Locale:   cfg.Language(),
	})
	return svc, release, nil
}

// loadEntities reads a JSON or YAML list of entities. An object is accepted
// when it holds the list under "items".
func loadEntities(path string) ([]datatable.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inkhubctl: read data %s: %w", path, err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("inkhubctl: parse data %s: %w", path, err)
	}
	var items []datatable.Entity
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
		var envelope struct {
			Items []datatable.Entity `yaml:"items"`
		}
		if err := node.Decode(&envelope); err != nil {
			return nil, fmt.Errorf("inkhubctl: decode data %s: %w", path, err)
		}
		items = envelope.Items
	} else if err := node.Decode(&items); err != nil {
		return nil, fmt.Errorf("inkhubctl: decode data %s: %w", path, err)
	}
	return items, nil
}

// loadQuery reads a YAML query state. An empty path yields the zero query.
func loadQuery(path string) (datatable.Query, error) {
	var q datatable.Query
	if path == "" {
		return q, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return q, fmt.Errorf("inkhubctl: read query %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&q); err != nil && !errors.Is(err, io.EOF) {
		return q, fmt.Errorf("inkhubctl: parse query %s: %w", path, err)
	}
	return q, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
