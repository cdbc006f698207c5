package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-inkhub/components/cards"
)

var errMissingCardService = errors.New("card command requires service")

type cardService interface {
	CreateCard(ctx context.Context, code string, card cards.CustomCard) (cards.CustomCard, error)
	UpdateCard(ctx context.Context, code, id string, patch cards.Patch) (cards.CustomCard, error)
	ToggleCard(ctx context.Context, code, id string) (cards.CustomCard, error)
	ReorderCards(ctx context.Context, code string, order []string) ([]cards.CustomCard, error)
	DeleteCard(ctx context.Context, code, id string) error
	ToggleDefaultCard(ctx context.Context, code, key string) (map[string]bool, error)
}

// CreateCardInput carries a card draft.
type CreateCardInput struct {
	Resource string           `json:"resource"`
	Card     cards.CustomCard `json:"card"`
	// Created receives the stored card when set.
	Created *cards.CustomCard `json:"-"`
}

// CreateCardCommand wraps Service.CreateCard.
type CreateCardCommand struct {
	service   cardService
	telemetry Telemetry
}

// NewCreateCardCommand builds the command.
func NewCreateCardCommand(service cardService, telemetry Telemetry) *CreateCardCommand {
	return &CreateCardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateCardInput] = (*CreateCardCommand)(nil)

// Execute stores the draft.
func (c *CreateCardCommand) Execute(ctx context.Context, msg CreateCardInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	card, err := c.service.CreateCard(ctx, msg.Resource, msg.Card)
	if err != nil {
		return err
	}
	if msg.Created != nil {
		*msg.Created = card
	}
	c.telemetry.Record(ctx, "admin.command.card_create", map[string]any{
		"resource": msg.Resource,
		"card_id":  card.ID,
	})
	return nil
}

// UpdateCardInput edits one card.
type UpdateCardInput struct {
	Resource string      `json:"resource"`
	ID       string      `json:"id"`
	Patch    cards.Patch `json:"patch"`
}

// UpdateCardCommand wraps Service.UpdateCard.
type UpdateCardCommand struct {
	service cardService
}

// NewUpdateCardCommand builds the command.
func NewUpdateCardCommand(service cardService) *UpdateCardCommand {
	return &UpdateCardCommand{service: service}
}

var _ gocommand.Commander[UpdateCardInput] = (*UpdateCardCommand)(nil)

// Execute applies the patch.
func (c *UpdateCardCommand) Execute(ctx context.Context, msg UpdateCardInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	_, err := c.service.UpdateCard(ctx, msg.Resource, msg.ID, msg.Patch)
	return err
}

// CardInput addresses one card.
type CardInput struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// ToggleCardCommand wraps Service.ToggleCard.
type ToggleCardCommand struct {
	service cardService
}

// NewToggleCardCommand builds the command.
func NewToggleCardCommand(service cardService) *ToggleCardCommand {
	return &ToggleCardCommand{service: service}
}

var _ gocommand.Commander[CardInput] = (*ToggleCardCommand)(nil)

// Execute flips visibility.
func (c *ToggleCardCommand) Execute(ctx context.Context, msg CardInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	_, err := c.service.ToggleCard(ctx, msg.Resource, msg.ID)
	return err
}

// DeleteCardCommand wraps Service.DeleteCard.
type DeleteCardCommand struct {
	service   cardService
	telemetry Telemetry
}

// NewDeleteCardCommand builds the command.
func NewDeleteCardCommand(service cardService, telemetry Telemetry) *DeleteCardCommand {
	return &DeleteCardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CardInput] = (*DeleteCardCommand)(nil)

// Execute removes the card.
func (c *DeleteCardCommand) Execute(ctx context.Context, msg CardInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	if err := c.service.DeleteCard(ctx, msg.Resource, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.card_delete", map[string]any{
		"resource": msg.Resource,
		"card_id":  msg.ID,
	})
	return nil
}

// ReorderCardsInput lists card ids in the new order.
type ReorderCardsInput struct {
	Resource string   `json:"resource"`
	CardIDs  []string `json:"cardIds"`
}

// ReorderCardsCommand wraps Service.ReorderCards.
type ReorderCardsCommand struct {
	service cardService
}

// NewReorderCardsCommand builds the command.
func NewReorderCardsCommand(service cardService) *ReorderCardsCommand {
	return &ReorderCardsCommand{service: service}
}

var _ gocommand.Commander[ReorderCardsInput] = (*ReorderCardsCommand)(nil)

// Execute applies the ordering.
func (c *ReorderCardsCommand) Execute(ctx context.Context, msg ReorderCardsInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	_, err := c.service.ReorderCards(ctx, msg.Resource, msg.CardIDs)
	return err
}

// DefaultCardInput addresses one built-in KPI card.
type DefaultCardInput struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

// ToggleDefaultCardCommand wraps Service.ToggleDefaultCard.
type ToggleDefaultCardCommand struct {
	service cardService
}

// NewToggleDefaultCardCommand builds the command.
func NewToggleDefaultCardCommand(service cardService) *ToggleDefaultCardCommand {
	return &ToggleDefaultCardCommand{service: service}
}

var _ gocommand.Commander[DefaultCardInput] = (*ToggleDefaultCardCommand)(nil)

// Execute flips the built-in card visibility.
func (c *ToggleDefaultCardCommand) Execute(ctx context.Context, msg DefaultCardInput) error {
	if c.service == nil {
		return errMissingCardService
	}
	_, err := c.service.ToggleDefaultCard(ctx, msg.Resource, msg.Key)
	return err
}
