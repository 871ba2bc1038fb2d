// Package extractors groups the source-type specific content extractors.
// Each subpackage implements the driven.Extractor port: given a local
// file path or URL, it produces the raw text and any tabular fragments
// found in the source.
//
// Extraction failure policy: a missing or unreadable source yields empty
// text, no tables, and a nil error — the failure is logged and the
// caller's batch continues. Errors writing derived artifacts (table CSVs,
// transcripts) do propagate.
package extractors
