// Package events defines the payloads published on the event bus while the
// GraphQL handler serves a request.
package events
