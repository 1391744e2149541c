package model

// SyncAction is what happened to a pull request's status comment during a run.
type SyncAction string

const (
	SyncActionCreated   SyncAction = "created"   // New marked comment posted.
	SyncActionEdited    SyncAction = "edited"    // Existing marked comment rewritten for a newer commit.
	SyncActionUnchanged SyncAction = "unchanged" // Marked comment already references the head commit.
	SyncActionSkipped   SyncAction = "skipped"   // Dashboard has no test data for the head commit.
	SyncActionFailed    SyncAction = "failed"
)

// AllSyncActions lists every action in reporting order.
var AllSyncActions = []SyncAction{
	SyncActionCreated,
	SyncActionEdited,
	SyncActionUnchanged,
	SyncActionSkipped,
	SyncActionFailed,
}
