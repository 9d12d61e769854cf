// Package store provides durable, content-addressed storage for
// saved graph documents.
//
// Every artifact is keyed by a domain-separated SHA-256 hash of the
// document's canonical form (sorted keys, NFC-normalized strings, no
// HTML escaping), so the same graph saved twice stores once. SQLite
// with WAL mode backs the table; artifact row ids are time-sortable
// UUIDv7 strings.
package store
