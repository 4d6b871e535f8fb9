package task

import "time"

type Task struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	DueDate     *time.Time   `json:"due_date,omitempty" db:"due_date"`
	Completed   bool         `json:"completed" db:"completed"`
	UserID      int64        `json:"user_id" db:"user_id"`
	Username    string       `json:"username,omitempty" db:"username"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment — метаданные файла задачи. FileName и FilePath внутренние,
// наружу уходит только публичный URL.
type Attachment struct {
	ID        int64     `json:"id" db:"id"`
	TaskID    int64     `json:"task_id" db:"task_id"`
	Name      string    `json:"name" db:"original_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	Size      int64     `json:"size" db:"size"`
	FileName  string    `json:"-" db:"file_name"`
	FilePath  string    `json:"-" db:"file_path"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

type Status string

// токены статуса из query-параметров, любые другие значения игнорируются
const StatusDone Status = "hecha"
const StatusPending Status = "no_hecha"

// Filters — необязательные условия выборки, каждое поле независимо
type Filters struct {
	Status    Status
	StartDate string
	EndDate   string
	Search    string
}

func (f Filters) Empty() bool {
	return f.Status == "" && f.StartDate == "" && f.EndDate == "" && f.Search == ""
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Progress  int `json:"progress"`
}
