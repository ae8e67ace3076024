// Package bot drives the conversational flows: the series-add wizard,
// the admin revoke and unrevoke confirmations, and the one-shot library
// commands. It routes each inbound message by the user's cached step,
// resolves keyboard replies against the option lists offered on the
// previous turn, and advances or aborts the flow.
package bot
