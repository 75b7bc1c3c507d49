// Package types defines the JSON bodies written by the HTTP API.
package types
