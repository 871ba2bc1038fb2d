// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): extractors, embedding and LLM services,
// vector index storage, market data, and chart rendering.
package driven
