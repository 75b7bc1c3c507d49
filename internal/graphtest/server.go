// Package graphtest provides a fake identity endpoint and list store API
// for tests. It implements the client-credentials token endpoint and the
// site, list and item routes the gateway uses, backed by in-memory data.
package graphtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Operation names used for request counting and response overrides.
const (
	OpToken = "token"
	OpSite  = "site"
	OpLists = "lists"
	OpItem  = "item"
	OpItems = "items"
)

// APIVersionPath is the prefix of every list store route.
const APIVersionPath = "/v1.0"

// Server is a fake identity provider and list store.
type Server struct {
	server *httptest.Server

	mu        sync.Mutex
	tenant    string
	clientID  string
	secret    string
	tokenTTL  int
	pageSize  int
	issued    map[string]bool
	nextToken int
	sites     map[string]string
	lists     map[string][]map[string]any
	items     map[string][]map[string]any
	responses map[string]MockResponse
	requests  []RecordedRequest
}

// MockResponse overrides the response of one operation.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// RecordedRequest captures a request received by the server.
type RecordedRequest struct {
	Op            string
	Path          string
	RawPath       string
	Query         string
	Authorization string
	Form          map[string]string
}

// NewServer starts a fake accepting the given tenant and client
// credentials.
func NewServer(tenant, clientID, secret string) *Server {
	s := &Server{
		tenant:    tenant,
		clientID:  clientID,
		secret:    secret,
		tokenTTL:  3599,
		issued:    make(map[string]bool),
		sites:     make(map[string]string),
		lists:     make(map[string][]map[string]any),
		items:     make(map[string][]map[string]any),
		responses: make(map[string]MockResponse),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL, usable as the identity authority.
func (s *Server) URL() string {
	return s.server.URL
}

// GraphURL returns the base URL of the list store API.
func (s *Server) GraphURL() string {
	return s.server.URL + APIVersionPath
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetTokenTTL sets the expires_in value of issued tokens, in seconds.
func (s *Server) SetTokenTTL(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = seconds
}

// SetPageSize splits collection responses into pages of n entries linked
// by @odata.nextLink. Zero disables paging.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// AddSite registers a site reachable as {host}:/sites/{path}.
func (s *Server) AddSite(host, path, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[host+":/sites/"+path] = id
}

// AddList appends a list to a site. Lists are returned in insertion order.
func (s *Server) AddList(siteID, listID, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[siteID] = append(s.lists[siteID], map[string]any{
		"id":          listID,
		"displayName": displayName,
		"webUrl":      "https://example.test/lists/" + listID,
	})
}

// AddItem appends an item with the given field bag to a list.
func (s *Server) AddItem(siteID, listID, itemID string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bag := map[string]any{"id": itemID}
	for k, v := range fields {
		bag[k] = v
	}
	key := siteID + "/" + listID
	s.items[key] = append(s.items[key], map[string]any{
		"id":                   itemID,
		"fields":               bag,
		"@odata.etag":          fmt.Sprintf("\"%s,1\"", itemID),
		"createdDateTime":      "2024-03-01T09:30:00Z",
		"lastModifiedDateTime": "2024-03-02T10:00:00Z",
	})
}

// SetResponse overrides the response for an operation.
func (s *Server) SetResponse(op string, resp MockResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[op] = resp
}

// ClearResponse removes an override.
func (s *Server) ClearResponse(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.responses, op)
}

// RevokeTokens makes every issued token invalid.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = make(map[string]bool)
}

// Count returns the number of requests received for an operation.
func (s *Server) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Op == op {
			n++
		}
	}
	return n
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request for an operation.
func (s *Server) LastRequest(op string) (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Op == op {
			return s.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

// ErrorBody builds a list store error body.
func ErrorBody(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	op, route := classify(r)

	rec := RecordedRequest{
		Op:            op,
		Path:          r.URL.Path,
		RawPath:       r.URL.EscapedPath(),
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
	}
	if op == OpToken {
		if err := r.ParseForm(); err == nil {
			rec.Form = make(map[string]string, len(r.PostForm))
			for k := range r.PostForm {
				rec.Form[k] = r.PostForm.Get(k)
			}
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	override, hasOverride := s.responses[op]
	s.mu.Unlock()

	if hasOverride {
		if override.Delay > 0 {
			select {
			case <-time.After(override.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for k, v := range override.Headers {
			w.Header().Set(k, v)
		}
		writeJSON(w, override.StatusCode, override.Body)
		return
	}

	switch op {
	case OpToken:
		s.handleToken(w, r)
		return
	case "":
		writeJSON(w, http.StatusBadRequest, ErrorBody("invalidRequest", "Invalid request"))
		return
	}

	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, ErrorBody("InvalidAuthenticationToken", "Access token validation failure."))
		return
	}

	switch op {
	case OpSite:
		s.handleSite(w, route)
	case OpLists:
		s.handleLists(w, r, route)
	case OpItem:
		s.handleItem(w, route)
	case OpItems:
		s.handleItems(w, r, route)
	}
}

// classify maps a request to an operation and its path segments.
func classify(r *http.Request) (string, []string) {
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
		tenant := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/oauth2/v2.0/token")
		return OpToken, []string{tenant}
	}
	if r.Method != http.MethodGet {
		return "", nil
	}

	rest, ok := strings.CutPrefix(r.URL.Path, APIVersionPath+"/sites/")
	if !ok {
		return "", nil
	}
	if strings.Contains(rest, ":/sites/") {
		return OpSite, []string{rest}
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[1] == "lists":
		return OpLists, parts
	case len(parts) == 4 && parts[1] == "lists" && parts[3] == "items":
		return OpItems, parts
	case len(parts) == 5 && parts[1] == "lists" && parts[3] == "items":
		return OpItem, parts
	}
	return "", nil
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	tenant := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/oauth2/v2.0/token")

	s.mu.Lock()
	defer s.mu.Unlock()

	if tenant != s.tenant {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_request",
			"error_description": fmt.Sprintf("AADSTS90002: Tenant '%s' not found.", tenant),
		})
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "unsupported_grant_type",
			"error_description": "AADSTS70003: The grant type is not supported.",
		})
		return
	}
	if r.PostForm.Get("client_id") != s.clientID || r.PostForm.Get("client_secret") != s.secret {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error":             "invalid_client",
			"error_description": "AADSTS7000215: Invalid client secret provided.",
		})
		return
	}

	s.nextToken++
	token := "graph-token-" + strconv.Itoa(s.nextToken)
	s.issued[token] = true

	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":     "Bearer",
		"expires_in":     s.tokenTTL,
		"ext_expires_in": s.tokenTTL,
		"access_token":   token,
	})
}

func (s *Server) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued[token]
}

func (s *Server) handleSite(w http.ResponseWriter, route []string) {
	s.mu.Lock()
	id, ok := s.sites[route[0]]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorBody("itemNotFound", "Requested site could not be found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"displayName": route[0],
	})
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request, route []string) {
	s.mu.Lock()
	lists, ok := s.lists[route[0]]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorBody("itemNotFound", "Requested site could not be found"))
		return
	}
	writeJSON(w, http.StatusOK, s.page(r, lists))
}

func (s *Server) handleItem(w http.ResponseWriter, route []string) {
	s.mu.Lock()
	items := s.items[route[0]+"/"+route[2]]
	s.mu.Unlock()

	for _, item := range items {
		if item["id"] == route[4] {
			writeJSON(w, http.StatusOK, item)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, ErrorBody("itemNotFound", "The resource could not be found."))
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request, route []string) {
	filter := r.URL.Query().Get("$filter")
	field, value, err := parseFilter(filter)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody("invalidRequest", err.Error()))
		return
	}

	s.mu.Lock()
	items := s.items[route[0]+"/"+route[2]]
	s.mu.Unlock()

	matched := []map[string]any{}
	for _, item := range items {
		bag, _ := item["fields"].(map[string]any)
		if v, ok := bag[field]; ok && fmt.Sprint(v) == value {
			matched = append(matched, item)
		}
	}
	writeJSON(w, http.StatusOK, s.page(r, matched))
}

// page returns the collection slice selected by $skiptoken.
func (s *Server) page(r *http.Request, values []map[string]any) map[string]any {
	s.mu.Lock()
	size := s.pageSize
	s.mu.Unlock()

	if values == nil {
		values = []map[string]any{}
	}
	if size <= 0 {
		return map[string]any{"value": values}
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("$skiptoken"))
	if offset > len(values) {
		offset = len(values)
	}
	end := offset + size
	if end > len(values) {
		end = len(values)
	}

	body := map[string]any{"value": values[offset:end]}
	if end < len(values) {
		q := r.URL.Query()
		q.Set("$skiptoken", strconv.Itoa(end))
		body["@odata.nextLink"] = s.server.URL + r.URL.EscapedPath() + "?" + q.Encode()
	}
	return body
}

// parseFilter understands the single equality clause
// fields/<name> eq '<literal>'.
func parseFilter(filter string) (string, string, error) {
	if filter == "" {
		return "", "", fmt.Errorf("missing $filter")
	}
	rest, ok := strings.CutPrefix(filter, "fields/")
	if !ok {
		return "", "", fmt.Errorf("invalid filter %q", filter)
	}
	field, literal, ok := strings.Cut(rest, " eq ")
	if !ok || len(literal) < 2 || literal[0] != '\'' || literal[len(literal)-1] != '\'' {
		return "", "", fmt.Errorf("invalid filter %q", filter)
	}
	value := literal[1 : len(literal)-1]
	if strings.Count(value, "'")%2 != 0 {
		return "", "", fmt.Errorf("unterminated literal in %q", filter)
	}
	return field, strings.ReplaceAll(value, "''", "'"), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
