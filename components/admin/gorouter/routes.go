package gorouter

import (
	"bytes"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/admin/httpapi"
)

// Config wires go-router with the admin shell controller and REST handlers.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *admin.Controller
	API        *httpapi.Handlers
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths mounted under BasePath.
type RouteConfig struct {
	Shell        string
	ShellPayload string
	API          string
}

// Register mounts the shell pages and the REST API on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Shell, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), ctx.Param("resource"), &buf); err != nil {
			return httpapi.RespondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.ShellPayload, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.ShellPayload(ctx.Context(), ctx.Param("resource"))
		if err != nil {
			return httpapi.RespondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group.Group(routes.API), cfg.API)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], h *httpapi.Handlers) {
	r.Get("/:resource", router.WrapHandler(h.HandlePage))
	r.Post("/:resource/query", router.WrapHandler(h.HandleQuery))
	r.Post("/:resource/sort", router.WrapHandler(h.HandleSort))
	r.Post("/:resource/select", router.WrapHandler(h.HandleSelect))
	r.Get("/:resource/values/:field", router.WrapHandler(h.HandleUniqueValues))
	r.Post("/:resource/bulk", router.WrapHandler(h.HandleBulkEdit))
	r.Post("/:resource/bulk/delete", router.WrapHandler(h.HandleBulkDelete))
	r.Post("/:resource/refresh", router.WrapHandler(h.HandleRefresh))
	r.Get("/:resource/export", router.WrapHandler(h.HandleExport))

	r.Get("/:resource/kpis", router.WrapHandler(h.HandleKPIs))
	r.Get("/:resource/kpis/:key/export", router.WrapHandler(h.HandleExportKPI))
	r.Get("/:resource/chart", router.WrapHandler(h.HandleChart))
	r.Get("/:resource/visibility", router.WrapHandler(h.HandleVisibility))
	r.Post("/:resource/visibility/:key/toggle", router.WrapHandler(h.HandleToggleDefaultCard))

	r.Get("/:resource/cards", router.WrapHandler(h.HandleCards))
	r.Post("/:resource/cards", router.WrapHandler(h.HandleCreateCard))
	r.Post("/:resource/cards/reorder", router.WrapHandler(h.HandleReorderCards))
	r.Patch("/:resource/cards/:id", router.WrapHandler(h.HandleUpdateCard))
	r.Post("/:resource/cards/:id/toggle", router.WrapHandler(h.HandleToggleCard))
	r.Delete("/:resource/cards/:id", router.WrapHandler(h.HandleDeleteCard))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Shell == "" {
		routes.Shell = "/:resource"
	}
	if routes.ShellPayload == "" {
		routes.ShellPayload = "/:resource/_shell"
	}
	if routes.API == "" {
		routes.API = "/api"
	}
	return routes
}
