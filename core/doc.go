// Package core contains the canonical go-xero domain contracts: endpoint
// configuration, the OAuth1 signing context, request/transport descriptors,
// and the Xero response error taxonomy. Higher-level packages (auth, resource,
// transport, store) depend on this package; core must not depend on them.
package core
