package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

func resourceFor(t *testing.T, code string) admin.Resource {
	t.Helper()
	res, ok := admin.NewRegistry().Resource(code)
	if !ok {
		t.Fatalf("missing default resource %s", code)
	}
	return res
}

func TestHTTPClientFetchEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shopify/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","title":"Shirt","price":19.5},null,{"id":"p2","title":"Mug","price":"8"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", Token: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	items, err := client.Fetch(context.Background(), resourceFor(t, admin.ShopifyProducts))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %#v", items)
	}
	if price, _ := datatable.AsNumber(items[0].Get("price")); items[0].ID() != "p1" || price != 19.5 {
		t.Fatalf("unexpected first item %#v", items[0])
	}
	if price, ok := datatable.AsNumber(items[1].Get("price")); !ok || price != 8 {
		t.Fatalf("expected numeric coercion of string price, got %#v", items[1])
	}
}

func TestHTTPClientFetchArrayAndOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/pins":
			_, _ = w.Write([]byte(`[{"id":"pin-1","impressions":10}]`))
		case "/designs":
			_, _ = w.Write([]byte(`{"items":[{"id":"d1"}]}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{
		BaseURL:   server.URL,
		Endpoints: map[string]string{admin.PinterestPins: "/v2/pins"},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	pins, err := client.Fetch(context.Background(), resourceFor(t, admin.PinterestPins))
	if err != nil || len(pins) != 1 || pins[0].ID() != "pin-1" {
		t.Fatalf("fetch pins returned %#v, %v", pins, err)
	}
	designs, err := client.Fetch(context.Background(), resourceFor(t, admin.DesignLibrary))
	if err != nil || len(designs) != 1 {
		t.Fatalf("fetch designs returned %#v, %v", designs, err)
	}
	_, err = client.Fetch(context.Background(), resourceFor(t, admin.ShopifyOrders))
	if err == nil || !strings.Contains(err.Error(), "remote error 404") {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestHTTPClientRejectsMissingArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if _, err := client.Fetch(context.Background(), resourceFor(t, admin.ShopifyOrders)); err == nil {
		t.Fatalf("expected error for missing orders array")
	}
	if _, err := client.Fetch(context.Background(), admin.Resource{Code: "blank"}); err == nil {
		t.Fatalf("expected error for resource without endpoint")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected base url error")
	}
}

func TestHTTPClientFeedsService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orders":[{"id":"o1","totalPrice":10},{"id":"o2","totalPrice":30}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	svc := admin.NewService(admin.Options{Source: client})
	kpis, err := svc.KPIs(context.Background(), admin.ShopifyOrders)
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	for _, k := range kpis {
		if k.Key == "revenue" && k.Value != 40 {
			t.Fatalf("expected revenue 40, got %v", k.Value)
		}
	}
}

func TestStaticSourceCopiesFixtures(t *testing.T) {
	src := NewStaticSource(map[string][]datatable.Entity{
		admin.DesignLibrary: {{"id": "d1", "downloads": 5}},
	})
	res := resourceFor(t, admin.DesignLibrary)
	items, err := src.Fetch(context.Background(), res)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	items[0]["downloads"] = 99
	again, _ := src.Fetch(context.Background(), res)
	if again[0]["downloads"] != 5 {
		t.Fatalf("fixtures were mutated: %#v", again)
	}
	if _, err := src.Fetch(context.Background(), resourceFor(t, admin.PinterestPins)); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFallbackJoinsErrors(t *testing.T) {
	failing := admin.SourceFunc(func(context.Context, admin.Resource) ([]datatable.Entity, error) {
		return nil, errors.New("upstream down")
	})
	static := NewStaticSource(nil)
	static.Set(admin.PinterestPins, []datatable.Entity{{"id": "pin-1"}})
	src := Fallback(failing, nil, static)

	items, err := src.Fetch(context.Background(), resourceFor(t, admin.PinterestPins))
	if err != nil || len(items) != 1 {
		t.Fatalf("fallback returned %#v, %v", items, err)
	}
	_, err = src.Fetch(context.Background(), resourceFor(t, admin.DesignLibrary))
	if !errors.Is(err, ErrNoData) || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected joined errors, got %v", err)
	}
}
