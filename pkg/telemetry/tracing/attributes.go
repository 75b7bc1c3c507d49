package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "shipdesk.*" namespace.
const (
	AttrRequestID = "shipdesk.request_id"
	AttrPipeline  = "shipdesk.pipeline"

	// List store attributes
	AttrSiteID   = "shipdesk.site.id"
	AttrListName = "shipdesk.list.name"
	AttrListID   = "shipdesk.list.id"
	AttrItemID   = "shipdesk.item.id"
	AttrFilter   = "shipdesk.query.filter"
	AttrRows     = "shipdesk.query.rows"

	// Document attributes
	AttrContainers = "shipdesk.document.containers"
	AttrPDFBytes   = "shipdesk.document.pdf_bytes"

	// Delivery attributes
	AttrRecipientFallback = "shipdesk.delivery.fallback"

	// Cache attributes
	AttrCacheHit = "shipdesk.cache.hit"
)

// SetListAttributes records which list a span operates on.
func SetListAttributes(span trace.Span, siteID, listName, listID string) {
	attrs := []attribute.KeyValue{attribute.String(AttrSiteID, siteID)}
	if listName != "" {
		attrs = append(attrs, attribute.String(AttrListName, listName))
	}
	if listID != "" {
		attrs = append(attrs, attribute.String(AttrListID, listID))
	}
	span.SetAttributes(attrs...)
}

// SetCacheAttributes records whether a cached value was used.
func SetCacheAttributes(span trace.Span, hit bool) {
	span.SetAttributes(attribute.Bool(AttrCacheHit, hit))
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
