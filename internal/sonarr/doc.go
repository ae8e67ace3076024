// Package sonarr speaks to the Sonarr HTTP API.
//
// The Client covers the subset of the API the bot needs: series lookup,
// quality profiles, root folders, library listing, the upcoming calendar,
// add-series submission, and fire-and-forget server commands (RSS sync,
// series refresh, wanted search). It also owns the season-monitoring
// policy math that shapes an add-series payload.
//
// All calls go through an HTTPDoer so tests can substitute a transport.
package sonarr
