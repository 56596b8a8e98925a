package domain

import "strings"

type StatusBucket string

const (
	StatusBucketCompleted  StatusBucket = "completed"
	StatusBucketProcessing StatusBucket = "processing"
	StatusBucketPending    StatusBucket = "pending"
)

// StatusView is the fixed display treatment of a status bucket.
type StatusView struct {
	Bucket   StatusBucket `json:"bucket"`
	Progress int          `json:"progress"`
	Tone     string       `json:"tone"`
	Title    string       `json:"title"`
}

var statusViews = map[StatusBucket]StatusView{
	StatusBucketCompleted:  {Bucket: StatusBucketCompleted, Progress: 100, Tone: "emerald", Title: "Task Finalized"},
	StatusBucketProcessing: {Bucket: StatusBucketProcessing, Progress: 65, Tone: "blue", Title: "In Progress"},
	StatusBucketPending:    {Bucket: StatusBucketPending, Progress: 15, Tone: "amber", Title: "In Progress"},
}

// ClassifyStatus maps any status label to its bucket. Unknown labels are pending.
func ClassifyStatus(status string) StatusBucket {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "COMPLETED":
		return StatusBucketCompleted
	case "PROCESSING":
		return StatusBucketProcessing
	default:
		return StatusBucketPending
	}
}

func DescribeStatus(status string) StatusView {
	return statusViews[ClassifyStatus(status)]
}

func StatusProgress(status string) int {
	return DescribeStatus(status).Progress
}
