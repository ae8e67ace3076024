// Package i18n resolves user-facing message strings from embedded TOML
// catalogs.
//
// Catalogs are keyed by BCP 47 language tags and matched against the
// configured language with golang.org/x/text, falling back to English.
// Lookups never fail: a missing key is returned verbatim so the gap is
// visible in chat instead of crashing a flow.
package i18n
