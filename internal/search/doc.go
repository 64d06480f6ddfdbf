// Package search answers index, tag and full-text queries over wiki pages.
// Queries are a linear scan over every page; the Index may keep the last
// listing in memory until a page changes.
package search
