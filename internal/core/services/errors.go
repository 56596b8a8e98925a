package services

import "errors"

// Stream errors
var (
	ErrStreamOffline = errors.New("stream: live feed is offline")
	ErrStreamClosed  = errors.New("stream: connection closed")
)

// Submission errors
var (
	ErrSubmissionInFlight = errors.New("submission: a submission is already in progress")
	ErrSubmissionFailed   = errors.New("submission: intake request failed")
)

// Timeline errors
var (
	ErrTimelineDisabled = errors.New("timeline: persistence is disabled")
)
