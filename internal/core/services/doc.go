// Package services contains the core business logic for finsight:
// ingestion (extract, chunk, embed, index), retrieval-augmented question
// answering with intent routing, the financial reference tables, and the
// chart generation services.
//
// Services implement the driving ports and depend only on the driven
// ports, keeping business logic independent of infrastructure.
package services
