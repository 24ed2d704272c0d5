package api

import (
	"time"

	"github.com/jrsteele09/uniassist/sessions"
)

// GoogleAuthRequest is the body of POST /api/auth/google.
type GoogleAuthRequest struct {
	Token string `json:"token"` // Google ID token
}

// AuthResponse is returned by the google and refresh endpoints. User is
// optional on refresh.
type AuthResponse struct {
	Token string                `json:"token"`
	User  *sessions.UserProfile `json:"user,omitempty"`
}

// GroupUpdate is the body of PUT /api/users/me/group. A nil GroupNumber
// clears the group and is sent as JSON null.
type GroupUpdate struct {
	GroupNumber *int `json:"groupNumber"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Mode    string `json:"mode"`
	Message string `json:"message"`
}

// ChatReply is the assistant's answer; Sources name the knowledge-base files used.
type ChatReply struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// File is an entry in the user's knowledge base.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Lesson is one timetable slot.
type Lesson struct {
	Subject string    `json:"subject"`
	Teacher string    `json:"teacher,omitempty"`
	Room    string    `json:"room,omitempty"`
	Kind    string    `json:"kind,omitempty"` // lecture, seminar, lab
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// DaySchedule is the response of GET /api/schedule.
type DaySchedule struct {
	Date    string   `json:"date"` // YYYY-MM-DD
	Group   *int     `json:"groupNumber,omitempty"`
	Lessons []Lesson `json:"lessons"`
}

// Task is a personal to-do item.
type Task struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	Done        bool       `json:"done"`
}

// ErrorResponse is the body of a failed backend call.
type ErrorResponse struct {
	Error string `json:"error"`
}
