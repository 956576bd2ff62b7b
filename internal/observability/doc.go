// Package observability builds the structured logger shared by every
// component of the research assistant.
//
// Log level and encoding come from configuration: JSON in deployed
// environments and a colored console encoder for local development.
package observability
