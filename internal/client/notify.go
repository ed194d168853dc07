package client

import (
	"sync"
	"time"
)

// NotificationTTL is how long a notification stays up unless dismissed.
const NotificationTTL = 5 * time.Second

type NotificationKind string

const (
	NotifyInfo  NotificationKind = "info"
	NotifyError NotificationKind = "error"
)

// Notification is one dismissible message.
type Notification struct {
	ID      int
	Kind    NotificationKind
	Message string
	Expires time.Time
}

// AlertClass is the alert style for the notification's kind.
func (n Notification) AlertClass() string {
	if n.Kind == NotifyError {
		return "alert-danger"
	}
	return "alert-info"
}

// Notifier holds the notifications currently on screen.
type Notifier struct {
	Now func() time.Time

	mu     sync.Mutex
	nextID int
	items  []Notification
}

func NewNotifier() *Notifier { return &Notifier{Now: time.Now} }

func (n *Notifier) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// Notify shows msg for NotificationTTL.
func (n *Notifier) Notify(kind NotificationKind, msg string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	note := Notification{ID: n.nextID, Kind: kind, Message: msg, Expires: n.now().Add(NotificationTTL)}
	n.items = append(n.items, note)
	return note
}

// Active returns unexpired notifications, oldest first, and forgets the
// rest.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	kept := n.items[:0]
	for _, it := range n.items {
		if now.Before(it.Expires) {
			kept = append(kept, it)
		}
	}
	n.items = kept
	return append([]Notification(nil), kept...)
}

// Dismiss removes the notification with id, if still shown.
func (n *Notifier) Dismiss(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}
