package models

import "time"

const DefaultSessionDurationMinutes = 60

type Session struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	TrainerID       int64         `json:"trainer_id"`
	ScheduledDate   string        `json:"scheduled_date"`
	ScheduledTime   string        `json:"scheduled_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	UserMessage     *string       `json:"user_message"`
	RoomID          string        `json:"room_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type TrainerSummary struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"full_name"`
	Specialization *string `json:"specialization"`
	AvatarURL      *string `json:"avatar_url"`
}

type SessionDetail struct {
	Session
	Trainer *TrainerSummary `json:"trainer,omitempty"`
}

type SessionEvent struct {
	Type      string  `json:"type"`
	Session   Session `json:"session"`
	Timestamp string  `json:"timestamp"`
}

const SessionDeletedEvent = "session.deleted"

// SessionEventType names the event emitted when a session enters status.
func SessionEventType(status SessionStatus) string {
	return "session." + string(status)
}
