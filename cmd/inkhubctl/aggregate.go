package main

import (
	"fmt"
	"math"

	"github.com/fatih/color"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

type aggregateCmd struct {
	Input   string   `required:"" short:"i" type:"existingfile" help:"JSON or YAML file with the entity list."`
	Field   string   `required:"" help:"Numeric field to aggregate."`
	Op      string   `default:"sum" enum:"sum,average,min,max,count,percentage,difference,custom" help:"Aggregation."`
	Formula string   `help:"Formula over sum, count, min, max and average (custom only)."`
	IDs     []string `name:"ids" help:"Restrict to these entity ids (comma separated or repeated)."`
}

func (cmd *aggregateCmd) Run(rt *runtime) error {
	items, err := loadEntities(cmd.Input)
	if err != nil {
		return err
	}
	op := metrics.Operation(cmd.Op)
	if op == metrics.OpCustom {
		if err := metrics.Validate(cmd.Formula); err != nil {
			return fmt.Errorf("inkhubctl: %w", err)
		}
	}
	ids := splitList(cmd.IDs)
	if len(ids) == 0 {
		ids = datatable.IDs(items)
	}
	values := metrics.Extract(items, ids, cmd.Field)
	value := metrics.Aggregate(values, op, metrics.AggregateOptions{
		Formula:      cmd.Formula,
		UniverseSize: len(items),
	})
	display := metrics.FormatField(value, cmd.Field, false)
	if math.IsInf(value, 0) {
		display = "∞"
	}
	fmt.Fprintf(rt.out, "%s(%s) over %d of %d entities: ", op, cmd.Field, len(values), len(items))
	color.New(color.FgCyan, color.Bold).Fprintln(rt.out, display)
	return nil
}

type kpisCmd struct {
	Resource string `required:"" short:"r" help:"Resource code."`
	Input    string `required:"" short:"i" type:"existingfile" help:"JSON or YAML file with the current entity list."`
	Baseline string `type:"existingfile" help:"Previous entity list to compute changes against."`
	Query    string `short:"q" type:"existingfile" help:"YAML query state applied to both lists."`
	All      bool   `help:"Include hidden KPIs."`
}

func (cmd *kpisCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	if cmd.Baseline != "" {
		previous, err := loadEntities(cmd.Baseline)
		if err != nil {
			return err
		}
		if err := svc.Seed(rt.ctx, cmd.Resource, previous); err != nil {
			return err
		}
	}
	current, err := loadEntities(cmd.Input)
	if err != nil {
		return err
	}
	if err := svc.Seed(rt.ctx, cmd.Resource, current); err != nil {
		return err
	}
	query, err := loadQuery(cmd.Query)
	if err != nil {
		return err
	}
	if _, err := svc.Query(rt.ctx, admin.QueryRequest{Resource: cmd.Resource, Query: query}); err != nil {
		return err
	}
	kpis, err := svc.KPIs(rt.ctx, cmd.Resource)
	if err != nil {
		return err
	}
	for _, k := range kpis {
		if !k.Visible && !cmd.All {
			continue
		}
		fmt.Fprintf(rt.out, "%-24s %14s  ", k.Label, k.Display)
		trendColor(k.Trend).Fprintf(rt.out, "%+.1f%%\n", k.Change)
	}
	return nil
}

func trendColor(trend metrics.Trend) *color.Color {
	switch trend {
	case metrics.TrendUp:
		return color.New(color.FgGreen)
	case metrics.TrendDown:
		return color.New(color.FgRed)
	}
	return color.New(color.FgWhite)
}
