// Package webclip converts fetched web pages into Markdown articles.
// Extraction is driven by declarative site templates: each template lists
// ordered selector rules per field, and the first rule that yields a valid
// value wins. A quality gate decides whether the result is usable.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, htmlquery/, yaml/).
package webclip
