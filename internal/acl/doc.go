// Package acl answers "may this user talk to the bot" and records the
// admin's grant and revoke decisions.
//
// The Gate keeps the allowed and revoked record sets in memory and mirrors
// every mutation to a SQLite database with a full rewrite of both tables
// inside one transaction. A persistence failure is returned to the caller
// and must be treated as fatal: the process may not keep serving with an
// access list it could not durably commit.
//
// A user id lives in at most one of the two sets at any time. Unrevoking
// only removes the record from the revoked set; the user re-authorizes
// with /auth (the password gate) rather than being silently restored.
package acl
