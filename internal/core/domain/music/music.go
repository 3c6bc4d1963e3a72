package music

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrProjectNotFound = errors.New("music project not found")
	ErrTitleRequired   = errors.New("title is required")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
)

type Project struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Lyrics     *string   `json:"lyrics" db:"lyrics"`
	Genre      *string   `json:"genre" db:"genre"`
	Mood       *string   `json:"mood" db:"mood"`
	VoiceStyle *string   `json:"voiceStyle" db:"voice_style"`
	Status     Status    `json:"status" db:"status"`
	AudioURL   *string   `json:"audioUrl" db:"audio_url"`
	Duration   *int      `json:"duration" db:"duration"` // seconds
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// CreateProjectRequest is the body of POST /api/music/generate.
type CreateProjectRequest struct {
	Title      string  `json:"title"`
	Lyrics     *string `json:"lyrics,omitempty"`
	Genre      *string `json:"genre,omitempty"`
	Mood       *string `json:"mood,omitempty"`
	VoiceStyle *string `json:"voiceStyle,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Update holds the fields a generation step may change; nil fields are left untouched.
type Update struct {
	Status   *Status
	AudioURL *string
	Duration *int
}

// Apply copies the non-nil fields of u onto p.
func (u Update) Apply(p *Project) {
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.AudioURL != nil {
		p.AudioURL = u.AudioURL
	}
	if u.Duration != nil {
		p.Duration = u.Duration
	}
}
