package todo

import (
	"time"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

type Todo struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	Priority    Priority   `json:"priority" db:"priority"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
}

// IsOverdue reports whether an open todo has a due date before now.
func (t *Todo) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// ToUTC moves every timestamp to UTC in place; stores may hand back local times.
func (t *Todo) ToUTC() {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.CompletedAt != nil {
		completedAt := t.CompletedAt.UTC()
		t.CompletedAt = &completedAt
	}
	if t.DueDate != nil {
		dueDate := t.DueDate.UTC()
		t.DueDate = &dueDate
	}
}

type Priority string

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

// Valid is case-sensitive: "high" is not a priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type CreateInput struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
}

// UpdateInput holds only the fields the caller sent; nil means "leave as is".
type UpdateInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Priority    *Priority
	DueDate     *time.Time
}

// IsEmpty reports whether no field is present.
func (in UpdateInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.IsCompleted == nil &&
		in.Priority == nil && in.DueDate == nil
}

type Filter struct {
	IsCompleted *bool
	Priority    string // matched case-insensitively, empty means any
}

const DefaultPageSize = 10

// Page is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip. ok is false when the offset
// does not fit in an int, i.e. the page is past any possible result.
func (p Page) Offset() (offset int, ok bool) {
	if p.Number <= 1 || p.Size <= 0 {
		return 0, true
	}
	if p.Number-1 > maxInt/p.Size {
		return 0, false
	}
	return (p.Number - 1) * p.Size, true
}

const maxInt = int(^uint(0) >> 1)

// Counts is a single snapshot of the collection used to build Stats.
type Counts struct {
	Total     int
	Completed int
	Overdue   int
}

type Stats struct {
	Total          int     `json:"totalTodos"`
	Completed      int     `json:"completedTodos"`
	Pending        int     `json:"pendingTodos"`
	Overdue        int     `json:"overdueTodos"`
	CompletionRate float64 `json:"completionRate"`
}
