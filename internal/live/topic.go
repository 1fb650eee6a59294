// Package live implements the real-time subscription layer: callers watch a
// patient's record collections and receive the full current ordered snapshot
// on every change. Change notifications fan out through a Notifier, so
// writers in other processes are observed as long as they publish to the
// same topic.
package live

// Collection names, matching the persisted document layout.
const (
	CollectionHistory   = "pronunciationHistory"
	CollectionFeedback  = "feedback"
	CollectionExercises = "assignedExercises"
)

// UserTopic builds the change topic for one of a patient's private
// collections: {ns}/users/{identity}/{collection}.
func UserTopic(namespace, identity, collection string) string {
	return namespace + "/users/" + identity + "/" + collection
}

// DirectoryTopic builds the change topic for the shared patient directory:
// {ns}/public/data/patients.
func DirectoryTopic(namespace string) string {
	return namespace + "/public/data/patients"
}
