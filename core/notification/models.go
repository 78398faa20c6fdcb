package notification

// Kinds of notification
const (
	KindGeneral      = "general"
	KindAnnouncement = "announcement"
	KindAssignment   = "assignment"
	KindGrade        = "grade"
)

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Kind      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Unread returns the notifications not read yet.
func Unread(notifs []Notification) []Notification {
	unread := make([]Notification, 0, len(notifs))
	for _, n := range notifs {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread
}
