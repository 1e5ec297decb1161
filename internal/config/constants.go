package config

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const (
	// JobTypePublishIssue creates an issue in the external tracker, generating
	// a title and body from the prompt when none were supplied.
	JobTypePublishIssue = "publish_issue"

	// DefaultMaxRetries is the job-level retry ceiling applied when a create
	// request does not specify one.
	DefaultMaxRetries = 3
)

var AllowedJobTypes = []string{JobTypePublishIssue}
