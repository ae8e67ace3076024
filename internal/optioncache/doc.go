// Package optioncache stores per-user wizard state with a fixed lifetime.
//
// Every value a multi-turn flow accumulates (candidate lists, chosen ids,
// the current step) is keyed by Telegram user id plus a Slot enum, so keys
// cannot collide across flows the way concatenated strings can. Entries
// expire a fixed TTL after they are written; reads never extend a
// lifetime. Expired entries are dropped lazily on read and by a periodic
// background sweep, and a lookup racing the sweeper simply observes the
// entry as absent.
package optioncache
