package models

import "time"

// Session represents one planned teaching interval: a teacher in front of a
// class, in a classroom, on a given day between two wall-clock times. Dates
// are YYYY-MM-DD and times are zero-padded HH:MM local values; no timezone
// handling applies anywhere in planning.
type Session struct {
	ID            int64     `db:"id" json:"id"`
	CompanyID     int64     `db:"company_id" json:"company_id"`
	Date          string    `db:"date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	TeacherID     int64     `db:"teacher_id" json:"teacher_id"`
	ClassID       int64     `db:"class_id" json:"class_id"`
	ClassRoomID   int64     `db:"class_room_id" json:"class_room_id"`
	SessionTypeID int64     `db:"session_type_id" json:"session_type_id"`
	Status        int       `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SessionDetail enriches a session with display names for exports and listings.
type SessionDetail struct {
	Session
	TeacherName   string `db:"teacher_name" json:"teacher_name"`
	ClassName     string `db:"class_name" json:"class_name"`
	ClassRoomName string `db:"class_room_name" json:"class_room_name"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	Date        string
	TeacherID   int64
	ClassID     int64
	ClassRoomID int64
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

// SessionConflict identifies the existing session a candidate collides with.
type SessionConflict struct {
	SessionID   int64  `json:"session_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TeacherID   int64  `json:"teacher_id"`
	ClassID     int64  `json:"class_id"`
	ClassRoomID int64  `json:"class_room_id"`
	Dimension   string `json:"dimension"`
}

// SessionConflictError is returned when a candidate session collides with an
// existing booking on at least one resource dimension.
type SessionConflictError struct {
	Dimension string          `json:"dimension"`
	Message   string          `json:"message"`
	Conflict  SessionConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
