// Package catalog defines the content data model, the sqlite-backed
// catalog store, and the season/episode aggregation used by series
// uploads.
package catalog
