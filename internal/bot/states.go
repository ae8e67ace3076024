package bot

// State marks a user's current step within a multi-turn flow. Absent
// means idle. States live in the option cache under the state slot and
// expire with it.
type State string

const (
	StateAwaitingSeriesChoice    State = "awaitingSeriesChoice"
	StateAwaitingProfileChoice   State = "awaitingProfileChoice"
	StateAwaitingFolderChoice    State = "awaitingFolderChoice"
	StateAwaitingMonitorChoice   State = "awaitingMonitorChoice"
	StateAwaitingRevokeTarget    State = "awaitingRevokeTarget"
	StateAwaitingRevokeConfirm   State = "awaitingRevokeConfirm"
	StateAwaitingUnrevokeTarget  State = "awaitingUnrevokeTarget"
	StateAwaitingUnrevokeConfirm State = "awaitingUnrevokeConfirm"
)
