// Package events defines the topics and payloads published on the keycase
// event bus.
package events
