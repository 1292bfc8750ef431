// Package codec converts between the Xero API's nested XML documents and
// plain Go values (maps, slices, strings, booleans, timestamps).
//
// The decode side is deliberately schema free: it walks the element tree and
// reconstructs records from tag shape alone, consulting per-field
// classification tables only to coerce scalar leaves. The encode side does
// the inverse, unrolling maps into nested elements and wrapping list items in
// the singular form of their collection name.
package codec
