// Package upload validates incoming media files and derives their
// on-disk storage layout.
package upload
