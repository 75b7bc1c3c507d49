// Package liststore resolves sites, lists and items in the list store REST
// API and runs filtered item queries.
//
// Every call takes the bearer token to use, so that a pipeline acquires one
// token and reuses it for each of its steps. Non-2xx answers are returned as
// *APIError with the response body preserved; a 401 additionally notifies
// the configured auth.Invalidator so the next pipeline run exchanges a new
// token. ResolveList matches display names exactly and returns
// *ListNotFoundError when no list matches.
//
// Filters compare a field against a string literal:
//
//	fields/Customer_x002d_ID eq 'O''Brien'
//
// Field names are encoded with EncodeFieldName and literals escaped with
// EscapeLiteral before the clause is percent-encoded.
package liststore
