// Package arachne provides a polite, pluggable web-crawling engine.
// A Spider supplies seed locations, fetch-and-discover logic, and item
// persistence; the engine crawls the link graph with bounded concurrency,
// a global politeness delay, and deduplication of visited locations.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, bloom/).
package arachne

// Version is reported in the default User-Agent.
const Version = "0.1.0"
