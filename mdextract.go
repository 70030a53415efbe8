// Package mdextract turns PDF documents and web pages into normalized
// markdown, raw text, images, tables and link metadata, packages them into
// a deterministic archive and delivers the archive through object storage
// behind a time-limited download link.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, pdf/, s3/, goldmark/).
package mdextract
