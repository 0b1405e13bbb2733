// Package registry keeps the latest known state of every tracked asset.
// Profiles are created on the first reading for an unseen identifier and are
// never removed. Readers always receive deep copies.
package registry
