package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"shipdesk-hq/gateway/internal/graphtest"
	"shipdesk-hq/gateway/pkg/auth"
	"shipdesk-hq/gateway/pkg/config"
)

const (
	siteHost = "contoso.sharepoint.com"
	sitePath = "logistics"
	siteID   = "contoso.sharepoint.com,6f1c,9a2b"
)

type fixture struct {
	srv    *graphtest.Server
	client *Client
	token  auth.Token
}

// recordingInvalidator remembers the tokens it was asked to drop.
type recordingInvalidator struct {
	tokens []auth.Token
}

func (r *recordingInvalidator) Invalidate(tok auth.Token) {
	r.tokens = append(r.tokens, tok)
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	srv := graphtest.NewServer("tenant", "client", "secret")
	t.Cleanup(srv.Close)

	srv.AddSite(siteHost, sitePath, siteID)
	srv.AddList(siteID, "list-bookings", "Bookings")
	srv.AddList(siteID, "list-clients", "Clients")
	srv.AddList(siteID, "list-bookings-old", "Bookings")
	srv.AddItem(siteID, "list-bookings", "7", map[string]any{"Title": "BK-7", "Customer": "ACME"})
	srv.AddItem(siteID, "list-clients", "1", map[string]any{"Title": "Acme Corp", "Customer_x002d_ID": "ACME"})
	srv.AddItem(siteID, "list-clients", "2", map[string]any{"Title": "Globex", "Customer_x002d_ID": "GLOBEX"})
	srv.AddItem(siteID, "list-clients", "3", map[string]any{"Title": "Acme Logistics", "Customer_x002d_ID": "ACME"})

	client, err := NewClient(&config.ListStoreConfig{
		BaseURL:  srv.GraphURL(),
		SiteHost: siteHost,
		SitePath: sitePath,
		Timeout:  2 * time.Second,
	}, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	provider := auth.NewProvider(&config.IdentityConfig{
		AuthorityURL: srv.URL(),
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
	})
	tok, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	return &fixture{srv: srv, client: client, token: tok}
}

func TestClient_ResolveSite(t *testing.T) {
	f := newFixture(t)

	id, err := f.client.ResolveSite(context.Background(), f.token)
	if err != nil {
		t.Fatalf("ResolveSite() error = %v", err)
	}
	if id != siteID {
		t.Errorf("ResolveSite() = %q, want %q", id, siteID)
	}

	req, _ := f.srv.LastRequest(graphtest.OpSite)
	if want := "/v1.0/sites/contoso.sharepoint.com:/sites/logistics"; req.Path != want {
		t.Errorf("path = %q, want %q", req.Path, want)
	}
	if req.Authorization != "Bearer "+f.token.AccessToken {
		t.Errorf("Authorization = %q, want bearer token", req.Authorization)
	}
}

func TestClient_ResolveSiteNestedPath(t *testing.T) {
	tests := []struct {
		name     string
		sitePath string
		want     string
	}{
		{"nested", "ops/emea", "/v1.0/sites/contoso.sharepoint.com:/sites/ops/emea"},
		{"surrounding slashes", "/ops/emea/", "/v1.0/sites/contoso.sharepoint.com:/sites/ops/emea"},
		{"segment with space", "ops/north america", "/v1.0/sites/contoso.sharepoint.com:/sites/ops/north%20america"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.srv.AddSite(siteHost, strings.Trim(tt.sitePath, "/"), "site-nested")
			f.client.sitePath = tt.sitePath

			id, err := f.client.ResolveSite(context.Background(), f.token)
			if err != nil {
				t.Fatalf("ResolveSite() error = %v", err)
			}
			if id != "site-nested" {
				t.Errorf("ResolveSite() = %q, want site-nested", id)
			}

			req, _ := f.srv.LastRequest(graphtest.OpSite)
			if req.RawPath != tt.want {
				t.Errorf("escaped path = %q, want %q", req.RawPath, tt.want)
			}
		})
	}
}

func TestClient_ResolveSiteNotFound(t *testing.T) {
	f := newFixture(t)
	f.client.sitePath = "unknown"

	_, err := f.client.ResolveSite(context.Background(), f.token)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ResolveSite() error = %v, want *APIError", err)
	}
	if !apiErr.NotFound() {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !strings.Contains(string(apiErr.Details()), "itemNotFound") {
		t.Errorf("Details() = %s, want the remote error body", apiErr.Details())
	}
}

func TestClient_ListListsPreservesOrder(t *testing.T) {
	f := newFixture(t)

	lists, err := f.client.ListLists(context.Background(), f.token, siteID)
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}

	want := []List{
		{ID: "list-bookings", DisplayName: "Bookings"},
		{ID: "list-clients", DisplayName: "Clients"},
		{ID: "list-bookings-old", DisplayName: "Bookings"},
	}
	if len(lists) != len(want) {
		t.Fatalf("len(lists) = %d, want %d", len(lists), len(want))
	}
	for i := range want {
		if lists[i] != want[i] {
			t.Errorf("lists[%d] = %+v, want %+v", i, lists[i], want[i])
		}
	}
}

func TestClient_ListListsFollowsNextLink(t *testing.T) {
	f := newFixture(t)
	f.srv.SetPageSize(1)

	lists, err := f.client.ListLists(context.Background(), f.token, siteID)
	if err != nil {
		t.Fatalf("ListLists() error = %v", err)
	}
	if len(lists) != 3 {
		t.Fatalf("len(lists) = %d, want 3", len(lists))
	}
	if lists[2].ID != "list-bookings-old" {
		t.Errorf("lists[2].ID = %q, want list-bookings-old", lists[2].ID)
	}
	if got := f.srv.Count(graphtest.OpLists); got != 3 {
		t.Errorf("list requests = %d, want 3", got)
	}
}

func TestClient_RejectsForeignNextLink(t *testing.T) {
	f := newFixture(t)
	f.srv.SetResponse(graphtest.OpLists, graphtest.MockResponse{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"value":           []any{map[string]any{"id": "x", "displayName": "X"}},
			"@odata.nextLink": "https://attacker.example/v1.0/sites/x/lists?$skiptoken=1",
		},
	})

	if _, err := f.client.ListLists(context.Background(), f.token, siteID); err == nil {
		t.Fatal("ListLists() error = nil, want foreign host error")
	}
}

func TestClient_ResolveList(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		list    string
		want    string
		wantErr bool
	}{
		{name: "exact match", list: "Clients", want: "list-clients"},
		{name: "first duplicate wins", list: "Bookings", want: "list-bookings"},
		{name: "case sensitive", list: "clients", wantErr: true},
		{name: "missing", list: "Invoices", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := f.client.ResolveList(context.Background(), f.token, siteID, tt.list)
			if tt.wantErr {
				var lnf *ListNotFoundError
				if !errors.As(err, &lnf) {
					t.Fatalf("ResolveList() error = %v, want *ListNotFoundError", err)
				}
				if want := "List '" + tt.list + "' not found"; err.Error() != want {
					t.Errorf("Error() = %q, want %q", err.Error(), want)
				}
				if id != "" {
					t.Errorf("ResolveList() id = %q, want empty", id)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveList() error = %v", err)
			}
			if id != tt.want {
				t.Errorf("ResolveList() = %q, want %q", id, tt.want)
			}
		})
	}
}

func TestClient_GetItem(t *testing.T) {
	f := newFixture(t)

	item, err := f.client.GetItem(context.Background(), f.token, siteID, "list-bookings", "7")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.ID != "7" {
		t.Errorf("ID = %q, want 7", item.ID)
	}
	if v, ok := item.Field("Customer"); !ok || v != "ACME" {
		t.Errorf("Field(Customer) = %q, %v, want ACME, true", v, ok)
	}

	req, _ := f.srv.LastRequest(graphtest.OpItem)
	if req.Query != "expand=fields" {
		t.Errorf("query = %q, want expand=fields", req.Query)
	}

	// Properties the client does not model survive a round trip.
	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"@odata.etag"`, `"createdDateTime"`, `"Title":"BK-7"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("marshalled item %s missing %s", out, key)
		}
	}
}

func TestClient_GetItemNotFoundPassesBodyThrough(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.GetItem(context.Background(), f.token, siteID, "list-bookings", "999")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetItem() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}

	var body map[string]map[string]string
	if err := json.Unmarshal(apiErr.Details(), &body); err != nil {
		t.Fatalf("Details() is not JSON: %v", err)
	}
	if body["error"]["code"] != "itemNotFound" {
		t.Errorf("error code = %q, want itemNotFound", body["error"]["code"])
	}
}

func TestClient_QueryItems(t *testing.T) {
	f := newFixture(t)

	items, err := f.client.QueryItems(context.Background(), f.token, siteID, "list-clients", "Customer-ID", "ACME")
	if err != nil {
		t.Fatalf("QueryItems() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "1" || items[1].ID != "3" {
		t.Errorf("item ids = %q, %q, want 1, 3", items[0].ID, items[1].ID)
	}

	req, _ := f.srv.LastRequest(graphtest.OpItems)
	q, err := url.ParseQuery(req.Query)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if got, want := q.Get("$filter"), "fields/Customer_x002d_ID eq 'ACME'"; got != want {
		t.Errorf("$filter = %q, want %q", got, want)
	}
	if q.Get("$expand") != "fields" {
		t.Errorf("$expand = %q, want fields", q.Get("$expand"))
	}
	if strings.Contains(req.Query, "+") {
		t.Errorf("query %q encodes spaces as '+'", req.Query)
	}
}

func TestClient_QueryItemsEscapesLiteral(t *testing.T) {
	f := newFixture(t)
	f.srv.AddItem(siteID, "list-clients", "4", map[string]any{"Customer_x002d_ID": "O'Brien & Sons"})

	items, err := f.client.QueryItems(context.Background(), f.token, siteID, "list-clients", "Customer-ID", "O'Brien & Sons")
	if err != nil {
		t.Fatalf("QueryItems() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "4" {
		t.Errorf("items = %+v, want only item 4", items)
	}
}

func TestClient_QueryItemsEmpty(t *testing.T) {
	f := newFixture(t)

	items, err := f.client.QueryItems(context.Background(), f.token, siteID, "list-clients", "Customer-ID", "NOBODY")
	if err != nil {
		t.Fatalf("QueryItems() error = %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %#v, want empty non-nil slice", items)
	}
}

func TestClient_UnauthorizedInvalidatesToken(t *testing.T) {
	inv := &recordingInvalidator{}
	f := newFixture(t, WithInvalidator(inv))
	f.srv.RevokeTokens()

	_, err := f.client.ResolveSite(context.Background(), f.token)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("ResolveSite() error = %v, want 401 *APIError", err)
	}
	if len(inv.tokens) != 1 || inv.tokens[0].AccessToken != f.token.AccessToken {
		t.Errorf("invalidated tokens = %v, want the rejected token", inv.tokens)
	}
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	f := newFixture(t)
	f.srv.SetResponse(graphtest.OpSite, graphtest.MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       nil,
	})

	_, err := f.client.ResolveSite(context.Background(), f.token)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ResolveSite() error = %v, want *APIError", err)
	}
	if apiErr.Details() != nil {
		t.Errorf("Details() = %s, want nil", apiErr.Details())
	}
	if want := "liststore resolve_site failed (status 502)"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClient_Check(t *testing.T) {
	f := newFixture(t)
	provider := auth.NewProvider(&config.IdentityConfig{
		AuthorityURL: f.srv.URL(),
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
	})

	if err := f.client.Check(context.Background(), provider); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	f.srv.SetResponse(graphtest.OpSite, graphtest.MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       graphtest.ErrorBody("serviceNotAvailable", "down"),
	})
	if err := f.client.Check(context.Background(), provider); err == nil {
		t.Error("Check() error = nil, want error")
	}
}
