// Package config loads and validates the service configuration.
//
// Configuration is layered. Defaults in code come first, then
// CONFIG_DIR/base.yaml, then CONFIG_DIR/<environment>.yaml, then the .env
// file named by ENV_FILE, then the process environment. When INSIDE_DOCKER is
// set only the defaults and the environment are used.
//
// The graph database settings accept both the NEO4J_* names and the short
// URI, USER and PASS names older deployments use:
//
//	NEO4J_URI      / URI
//	NEO4J_USERNAME / USER
//	NEO4J_PASSWORD / PASS
//
// Validation runs once at startup and fails fast when the database URI or
// credentials are missing, or when AUTH_URL is missing in provider mode.
//
// In development a Watcher reloads the files on change and pushes the new
// Config to callbacks; the server uses this to rotate SERVICE_SECRET and the
// log level without a restart.
package config
