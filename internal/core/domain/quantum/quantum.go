package quantum

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidPriority = errors.New("priority must be one of low, medium, high")
	ErrInvalidTasks    = errors.New("totalTasks must not be negative")
	ErrContentRequired = errors.New("content is required")
	ErrAuthorRequired  = errors.New("author is required")
	ErrNoFile          = errors.New("no file uploaded")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Members is stored as a JSON array column.
type Members []string

// Value encodes as text; a []byte would be sent to Postgres as bytea.
func (m Members) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Members) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = Members{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported members type %T", src)
	}
	return json.Unmarshal(b, m)
}

type Project struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"userId" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Description    *string    `json:"description" db:"description"`
	Priority       Priority   `json:"priority" db:"priority"`
	Progress       int        `json:"progress" db:"progress"` // 0-100
	TotalTasks     int        `json:"totalTasks" db:"total_tasks"`
	CompletedTasks int        `json:"completedTasks" db:"completed_tasks"`
	DueDate        *time.Time `json:"dueDate" db:"due_date"`
	Members        Members    `json:"members" db:"members"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	TotalTasks  int        `json:"totalTasks,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Members     Members    `json:"members,omitempty"`
}

// Validate checks the request and fills the default priority.
func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if !r.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if r.TotalTasks < 0 {
		return ErrInvalidTasks
	}
	return nil
}

type SecureMessage struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	Author    string    `json:"author" db:"author"`
	Encrypted bool      `json:"encrypted" db:"encrypted"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreateMessageRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (r *CreateMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrContentRequired
	}
	if strings.TrimSpace(r.Author) == "" {
		return ErrAuthorRequired
	}
	return nil
}

type SecureFile struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Filename     string    `json:"filename" db:"filename"`
	OriginalName string    `json:"originalName" db:"original_name"`
	Size         int64     `json:"size" db:"size"`
	MimeType     string    `json:"mimeType" db:"mime_type"`
	Encrypted    bool      `json:"encrypted" db:"encrypted"`
	Watermarked  bool      `json:"watermarked" db:"watermarked"`
	UploadPath   string    `json:"uploadPath" db:"upload_path"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Upload describes an incoming file before it is stored.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Watermark    bool
}
