// Package config provides configuration management for the Shipdesk gateway.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From an optional YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SHIPDESK_SECTION_FIELD,
// for example SHIPDESK_LISTSTORE_PRIMARY_LIST or SHIPDESK_MAIL_HOST. The
// plain names used by existing deployments are also read:
//
//   - CLIENT_ID, CLIENT_SECRET, TENANT_ID
//   - SHAREPOINT_SITE_HOST, SHAREPOINT_SITE_PATH
//   - SHAREPOINT_LIST_NAME, SHAREPOINT_LIST_NAME2
//   - SMTP_USER, SMTP_PASS, FALLBACK_RECIPIENT
//   - PORT, CHROME_BIN
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and swaps the
// global configuration after each debounced change. Handlers read the
// configuration per request, so the next request sees the new values.
package config
