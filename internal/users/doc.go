// Package users keeps wiki accounts in a single JSON array file. Every
// operation reads and rewrites the whole document.
package users
