// Package order persists restaurant orders in the store.
//
// Each order is stored as JSON under order:<id>, and its ID is added to the
// orders set so List can enumerate them. ReadFile loads orders from a YAML
// file for bulk import.
package order
