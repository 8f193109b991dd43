package domain

import "time"

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, dismissable message for the user. Storage problems
// reach the user as notices instead of failing the edit that caused them.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}
