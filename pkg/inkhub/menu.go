package inkhub

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-inkhub/components/admin"
)

// MenuBuilder ensures panel entries exist within a host admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures one navigation link.
type MenuItem struct {
	Code     string
	Parent   string
	Label    string
	Route    string
	Icon     string
	Position int
}

// MenuOptions configures SeedMenu.
type MenuOptions struct {
	MenuCode string
	BasePath string
	// Position offsets the section entries inside the host menu.
	Position int
}

// SeedMenu adds one parent entry per section and one child per resource tab,
// in registry order.
func SeedMenu(ctx context.Context, builder MenuBuilder, registry *admin.Registry, opts MenuOptions) error {
	if builder == nil {
		return errors.New("inkhub: menu builder is required")
	}
	if registry == nil {
		return errors.New("inkhub: registry is required")
	}
	if opts.MenuCode == "" {
		opts.MenuCode = "admin.main"
	}
	if opts.BasePath == "" {
		opts.BasePath = "/admin"
	}
	for i, section := range registry.Sections() {
		if len(section.Resources) == 0 {
			continue
		}
		parent := MenuItem{
			Code:     "inkhub." + section.Code,
			Label:    section.Label,
			Route:    opts.BasePath + "/" + section.Resources[0].Code,
			Icon:     section.Resources[0].Icon,
			Position: opts.Position + i,
		}
		if err := builder.EnsureMenuItem(ctx, opts.MenuCode, parent); err != nil {
			return fmt.Errorf("inkhub: menu section %s: %w", section.Code, err)
		}
		for j, res := range section.Resources {
			child := MenuItem{
				Code:     parent.Code + "." + res.Code,
				Parent:   parent.Code,
				Label:    res.TabLabel(),
				Route:    opts.BasePath + "/" + res.Code,
				Icon:     res.Icon,
				Position: j,
			}
			if err := builder.EnsureMenuItem(ctx, opts.MenuCode, child); err != nil {
				return fmt.Errorf("inkhub: menu item %s: %w", res.Code, err)
			}
		}
	}
	return nil
}
