package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Variant selects how a notification is styled.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

const defaultCapacity = 50

// Notification is a short user-visible message.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Feed buffers notifications until the UI drains them. When full, the
// oldest entries are dropped.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewFeed returns a feed holding at most capacity pending notifications.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

// Info queues a default notification.
func (f *Feed) Info(title, description string) Notification {
	return f.Push(title, description, VariantDefault)
}

// Error queues a destructive notification.
func (f *Feed) Error(title, description string) Notification {
	return f.Push(title, description, VariantDestructive)
}

// Push queues a notification and returns it.
func (f *Feed) Push(title, description string, variant Variant) Notification {
	n := Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   f.now().UTC(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
	return n
}

// Drain returns pending notifications in order and clears the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Pending returns how many notifications are queued.
func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
