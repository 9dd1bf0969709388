// Package middleware provides HTTP middleware for access logging and
// request metrics.
package middleware
