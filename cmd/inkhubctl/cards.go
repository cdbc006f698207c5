package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/goliatone/go-inkhub/components/cards"
	"github.com/goliatone/go-inkhub/components/metrics"
)

type cardsCmd struct {
	List    cardsListCmd    `cmd:"" help:"List stored cards."`
	Add     cardsAddCmd     `cmd:"" help:"Create a card."`
	Rm      cardsRmCmd      `cmd:"" help:"Delete a card."`
	Toggle  cardsToggleCmd  `cmd:"" help:"Show or hide a card."`
	Compute cardsComputeCmd `cmd:"" help:"Compute every card over a data file."`
}

type cardsListCmd struct {
	Resource string `required:"" short:"r" help:"Resource code."`
}

func (cmd *cardsListCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	list, err := svc.CardList(rt.ctx, cmd.Resource)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		color.New(color.FgYellow).Fprintf(rt.out, "No custom cards for %s\n", cmd.Resource)
		return nil
	}
	for _, card := range list {
		state := color.New(color.FgGreen).Sprint("visible")
		if !card.IsVisible {
			state = color.New(color.FgWhite).Sprint("hidden")
		}
		fmt.Fprintf(rt.out, "%s  %-24s %s(%s)  %d ids  %s\n", card.ID, card.Title, card.Operation, card.Field, len(card.SelectedProducts), state)
	}
	return nil
}

type cardsAddCmd struct {
	Resource string   `required:"" short:"r" help:"Resource code."`
	Title    string   `required:"" help:"Card title."`
	Field    string   `required:"" help:"Numeric field."`
	Op       string   `default:"sum" enum:"sum,average,min,max,count,percentage,difference,custom" help:"Aggregation."`
	Formula  string   `help:"Formula for custom cards."`
	IDs      []string `name:"ids" required:"" help:"Entity ids the card aggregates."`
	Color    string   `default:"blue" help:"Accent color."`
}

func (cmd *cardsAddCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	card, err := svc.CreateCard(rt.ctx, cmd.Resource, cards.CustomCard{
		Title:            cmd.Title,
		Field:            cmd.Field,
		Operation:        metrics.Operation(cmd.Op),
		Formula:          cmd.Formula,
		SelectedProducts: splitList(cmd.IDs),
		Color:            cmd.Color,
	})
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(rt.out, "✓ Created card %s (%s)\n", card.ID, card.Title)
	return nil
}

type cardsRmCmd struct {
	Resource string `required:"" short:"r" help:"Resource code."`
	ID       string `arg:"" help:"Card id."`
}

func (cmd *cardsRmCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	if err := svc.DeleteCard(rt.ctx, cmd.Resource, cmd.ID); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(rt.out, "✓ Deleted card %s\n", cmd.ID)
	return nil
}

type cardsToggleCmd struct {
	Resource string `required:"" short:"r" help:"Resource code."`
	ID       string `arg:"" help:"Card id."`
}

func (cmd *cardsToggleCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	card, err := svc.ToggleCard(rt.ctx, cmd.Resource, cmd.ID)
	if err != nil {
		return err
	}
	state := "hidden"
	if card.IsVisible {
		state = "visible"
	}
	color.New(color.FgGreen).Fprintf(rt.out, "✓ Card %s is now %s\n", card.ID, state)
	return nil
}

type cardsComputeCmd struct {
	Resource string `required:"" short:"r" help:"Resource code."`
	Input    string `required:"" short:"i" type:"existingfile" help:"JSON or YAML file with the entity list."`
}

func (cmd *cardsComputeCmd) Run(rt *runtime) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()

	items, err := loadEntities(cmd.Input)
	if err != nil {
		return err
	}
	if err := svc.Seed(rt.ctx, cmd.Resource, items); err != nil {
		return err
	}
	results, err := svc.Cards(rt.ctx, cmd.Resource)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(rt.out, "%-24s ", r.Card.Title)
		if r.FormulaError != "" {
			color.New(color.FgRed).Fprintf(rt.out, "invalid formula: %s\n", r.FormulaError)
			continue
		}
		color.New(color.FgCyan).Fprintf(rt.out, "%s", r.Display)
		fmt.Fprintf(rt.out, "  (%d/%d ids)\n", r.Matched, len(r.Card.SelectedProducts))
	}
	return nil
}
