// Package gateway runs the request pipelines behind the HTTP API.
//
// FetchItem, ListLists and FetchRelated acquire a token, resolve the
// configured site and read from the list store. FetchRelated follows the
// relation field of a primary list item to the matching rows of the
// secondary list. Submit renders a shipping instruction and emails it.
//
// Failures are returned as *StageError, which names the pipeline and the
// step that failed and unwraps to the cause. A Holder lets the server swap
// in a gateway built from a reloaded configuration.
package gateway
