// Package httpapi exposes the admin commands and queries as go-router handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/admin/commands"
	"github.com/goliatone/go-inkhub/components/admin/queries"
	"github.com/goliatone/go-inkhub/components/cards"
	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/export"
)

var errNotConfigured = errors.New("endpoint not configured")

// Handlers exposes HTTP endpoints backed by shared commands and queries.
// Nil members answer 501. Routes are mounted by the gorouter package.
type Handlers struct {
	Page         gocommand.Querier[queries.ResourceInput, admin.PageResult]
	Table        gocommand.Querier[admin.QueryRequest, admin.PageResult]
	UniqueValues gocommand.Querier[queries.UniqueValuesInput, []string]
	KPIs         gocommand.Querier[queries.ResourceInput, []admin.KPICard]
	Chart        gocommand.Querier[queries.ResourceInput, string]
	Cards        gocommand.Querier[queries.ResourceInput, []cards.Result]
	Visibility   gocommand.Querier[queries.ResourceInput, map[string]bool]
	Export       gocommand.Querier[admin.ExportRequest, export.Artifact]
	ExportKPI    gocommand.Querier[queries.ExportKPIInput, export.Artifact]

	Sort              gocommand.Commander[commands.SortInput]
	Select            gocommand.Commander[admin.SelectRequest]
	BulkEdit          gocommand.Commander[admin.BulkEditRequest]
	BulkDelete        gocommand.Commander[admin.BulkDeleteRequest]
	Refresh           gocommand.Commander[commands.RefreshResourceInput]
	CreateCard        gocommand.Commander[commands.CreateCardInput]
	UpdateCard        gocommand.Commander[commands.UpdateCardInput]
	ToggleCard        gocommand.Commander[commands.CardInput]
	DeleteCard        gocommand.Commander[commands.CardInput]
	ReorderCards      gocommand.Commander[commands.ReorderCardsInput]
	ToggleDefaultCard gocommand.Commander[commands.DefaultCardInput]
}

// HandlePage returns the current page of :resource.
func (h *Handlers) HandlePage(ctx router.Context) error {
	if h.Page == nil {
		return RespondError(ctx, errNotConfigured)
	}
	return h.page(ctx)
}

func (h *Handlers) page(ctx router.Context) error {
	if h.Page == nil {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
	page, err := h.Page.Query(ctx.Context(), queries.ResourceInput{Resource: ctx.Param("resource")})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, page)
}

// HandleQuery applies a query snapshot and returns the page.
func (h *Handlers) HandleQuery(ctx router.Context) error {
	if h.Table == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var q datatable.Query
	if err := bind(ctx, &q); err != nil {
		return badRequest(ctx, err)
	}
	page, err := h.Table.Query(ctx.Context(), admin.QueryRequest{Resource: ctx.Param("resource"), Query: q})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, page)
}

// HandleSort sorts by a column and returns the page.
func (h *Handlers) HandleSort(ctx router.Context) error {
	if h.Sort == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var payload commands.SortInput
	if err := bind(ctx, &payload); err != nil {
		return badRequest(ctx, err)
	}
	payload.Resource = ctx.Param("resource")
	if err := h.Sort.Execute(ctx.Context(), payload); err != nil {
		return RespondError(ctx, err)
	}
	return h.page(ctx)
}

// HandleSelect changes the selection and returns the page.
func (h *Handlers) HandleSelect(ctx router.Context) error {
	if h.Select == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var payload admin.SelectRequest
	if err := bind(ctx, &payload); err != nil {
		return badRequest(ctx, err)
	}
	payload.Resource = ctx.Param("resource")
	if err := h.Select.Execute(ctx.Context(), payload); err != nil {
		return RespondError(ctx, err)
	}
	return h.page(ctx)
}

func (h *Handlers) HandleUniqueValues(ctx router.Context) error {
	if h.UniqueValues == nil {
		return RespondError(ctx, errNotConfigured)
	}
	values, err := h.UniqueValues.Query(ctx.Context(), queries.UniqueValuesInput{
		Resource: ctx.Param("resource"),
		Field:    ctx.Param("field"),
	})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"values": values})
}

func (h *Handlers) HandleBulkEdit(ctx router.Context) error {
	if h.BulkEdit == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var payload admin.BulkEditRequest
	if err := bind(ctx, &payload); err != nil {
		return badRequest(ctx, err)
	}
	payload.Resource = ctx.Param("resource")
	if err := h.BulkEdit.Execute(ctx.Context(), payload); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) HandleBulkDelete(ctx router.Context) error {
	if h.BulkDelete == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var payload admin.BulkDeleteRequest
	if err := bind(ctx, &payload); err != nil {
		return badRequest(ctx, err)
	}
	payload.Resource = ctx.Param("resource")
	if err := h.BulkDelete.Execute(ctx.Context(), payload); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) HandleRefresh(ctx router.Context) error {
	if h.Refresh == nil {
		return RespondError(ctx, errNotConfigured)
	}
	if err := h.Refresh.Execute(ctx.Context(), commands.RefreshResourceInput{Resource: ctx.Param("resource")}); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
}

// HandleExport streams an export artifact. PDF answers 501 with the notice.
func (h *Handlers) HandleExport(ctx router.Context) error {
	if h.Export == nil {
		return RespondError(ctx, errNotConfigured)
	}
	format, err := export.ParseFormat(ctx.Query("format", string(export.FormatCSV)))
	if err != nil {
		return badRequest(ctx, err)
	}
	var fields []string
	if raw := ctx.Query("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	art, err := h.Export.Query(ctx.Context(), admin.ExportRequest{
		Resource: ctx.Param("resource"),
		Format:   format,
		Fields:   fields,
		Scope:    admin.ExportScope(ctx.Query("scope")),
	})
	if errors.Is(err, export.ErrComingSoon) {
		return ctx.JSON(http.StatusNotImplemented, map[string]string{"notice": art.Notice})
	}
	if err != nil {
		return RespondError(ctx, err)
	}
	return sendArtifact(ctx, art)
}

func (h *Handlers) HandleKPIs(ctx router.Context) error {
	if h.KPIs == nil {
		return RespondError(ctx, errNotConfigured)
	}
	kpis, err := h.KPIs.Query(ctx.Context(), queries.ResourceInput{Resource: ctx.Param("resource")})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"kpis": kpis})
}

func (h *Handlers) HandleExportKPI(ctx router.Context) error {
	if h.ExportKPI == nil {
		return RespondError(ctx, errNotConfigured)
	}
	art, err := h.ExportKPI.Query(ctx.Context(), queries.ExportKPIInput{
		Resource: ctx.Param("resource"),
		Key:      ctx.Param("key"),
	})
	if err != nil {
		return RespondError(ctx, err)
	}
	return sendArtifact(ctx, art)
}

func (h *Handlers) HandleChart(ctx router.Context) error {
	if h.Chart == nil {
		return RespondError(ctx, errNotConfigured)
	}
	html, err := h.Chart.Query(ctx.Context(), queries.ResourceInput{Resource: ctx.Param("resource")})
	if err != nil {
		return RespondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send([]byte(html))
}

func (h *Handlers) HandleVisibility(ctx router.Context) error {
	if h.Visibility == nil {
		return RespondError(ctx, errNotConfigured)
	}
	vis, err := h.Visibility.Query(ctx.Context(), queries.ResourceInput{Resource: ctx.Param("resource")})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"visibility": vis})
}

func (h *Handlers) HandleToggleDefaultCard(ctx router.Context) error {
	if h.ToggleDefaultCard == nil {
		return RespondError(ctx, errNotConfigured)
	}
	input := commands.DefaultCardInput{Resource: ctx.Param("resource"), Key: ctx.Param("key")}
	if err := h.ToggleDefaultCard.Execute(ctx.Context(), input); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
}

func (h *Handlers) HandleCards(ctx router.Context) error {
	if h.Cards == nil {
		return RespondError(ctx, errNotConfigured)
	}
	results, err := h.Cards.Query(ctx.Context(), queries.ResourceInput{Resource: ctx.Param("resource")})
	if err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"cards": results})
}

func (h *Handlers) HandleCreateCard(ctx router.Context) error {
	if h.CreateCard == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var card cards.CustomCard
	if err := bind(ctx, &card); err != nil {
		return badRequest(ctx, err)
	}
	var created cards.CustomCard
	input := commands.CreateCardInput{Resource: ctx.Param("resource"), Card: card, Created: &created}
	if err := h.CreateCard.Execute(ctx.Context(), input); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, created)
}

func (h *Handlers) HandleReorderCards(ctx router.Context) error {
	if h.ReorderCards == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var payload commands.ReorderCardsInput
	if err := bind(ctx, &payload); err != nil {
		return badRequest(ctx, err)
	}
	payload.Resource = ctx.Param("resource")
	if err := h.ReorderCards.Execute(ctx.Context(), payload); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
}

func (h *Handlers) HandleUpdateCard(ctx router.Context) error {
	if h.UpdateCard == nil {
		return RespondError(ctx, errNotConfigured)
	}
	var patch cards.Patch
	if err := bind(ctx, &patch); err != nil {
		return badRequest(ctx, err)
	}
	input := commands.UpdateCardInput{Resource: ctx.Param("resource"), ID: ctx.Param("id"), Patch: patch}
	if err := h.UpdateCard.Execute(ctx.Context(), input); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) HandleToggleCard(ctx router.Context) error {
	if h.ToggleCard == nil {
		return RespondError(ctx, errNotConfigured)
	}
	input := commands.CardInput{Resource: ctx.Param("resource"), ID: ctx.Param("id")}
	if err := h.ToggleCard.Execute(ctx.Context(), input); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
}

func (h *Handlers) HandleDeleteCard(ctx router.Context) error {
	if h.DeleteCard == nil {
		return RespondError(ctx, errNotConfigured)
	}
	input := commands.CardInput{Resource: ctx.Param("resource"), ID: ctx.Param("id")}
	if err := h.DeleteCard.Execute(ctx.Context(), input); err != nil {
		return RespondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

// bind decodes a JSON body. An empty body leaves out untouched.
func bind(ctx router.Context, out any) error {
	body := ctx.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func sendArtifact(ctx router.Context, art export.Artifact) error {
	ctx.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	ctx.SetHeader("Content-Type", art.ContentType)
	return ctx.Send(art.Body)
}

func badRequest(ctx router.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// RespondError writes err as JSON with the status from StatusFor.
func RespondError(ctx router.Context, err error) error {
	return ctx.JSON(StatusFor(err), map[string]string{"error": err.Error()})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, admin.ErrUnknownResource),
		errors.Is(err, admin.ErrUnknownKPI),
		errors.Is(err, cards.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrFieldRequired),
		errors.Is(err, cards.ErrInvalidCard),
		errors.Is(err, datatable.ErrEmptySelection),
		errors.Is(err, datatable.ErrEmptyPatch),
		errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
