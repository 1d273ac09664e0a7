// Package kbase builds searchable knowledge bases for a technical-discovery
// agent. It ingests heterogeneous sources (crawled web sites, local PDFs),
// normalizes them to text, chunks the text, and indexes the chunks as
// vectors for semantic retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, trafilatura/).
package kbase
