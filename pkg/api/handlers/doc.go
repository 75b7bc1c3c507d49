// Package handlers implements the HTTP API used by the shipping form.
//
//	GET  /api/item/{id}          primary list item, passed through unchanged
//	GET  /api/lists              [{displayName, id}] for every site list
//	GET  /api/item/{id}/clients  secondary list items related to the item
//	POST /api/submit-shipping    render and email a shipping instruction
//
// Failures are written as {"error": ..., "details": ...}; details is the
// remote service's JSON error body when one exists.
package handlers
