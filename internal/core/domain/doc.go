// Package domain contains the core business entities for finsight:
// documents, chunks, vector search results, conversation turns, and the
// financial reference records extracted from the ingested corpus.
//
// The domain layer has no dependencies on adapters or external services.
package domain
