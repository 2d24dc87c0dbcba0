package domain

import "time"

// Notification is the normalized cache-resident record. Read means
// "has been seen"; it is derived exactly once, at ingestion, by
// NormalizeNotification. No other code reads the raw wire flags.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	Link      string    `json:"link,omitempty"`
}

// WireNotification is the shape notifications arrive in, from the REST
// surface and from the push queue alike. Older backend versions emit
// `isRead` with inverted polarity (it marks records still pending
// acknowledgement), newer ones emit `read`; some emit both.
type WireNotification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      *bool     `json:"read,omitempty"`
	IsRead    *bool     `json:"isRead,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Link      string    `json:"link,omitempty"`
}

// NormalizeNotification reconciles the read/isRead naming split into a
// single seen flag. An explicit `read` field wins; otherwise the flag
// is the negation of `isRead`; with neither present the record is
// unread.
func NormalizeNotification(w WireNotification) Notification {
	var read bool
	switch {
	case w.Read != nil:
		read = *w.Read
	case w.IsRead != nil:
		read = !*w.IsRead
	}
	return Notification{
		ID:        w.ID,
		Title:     w.Title,
		Message:   w.Message,
		Read:      read,
		CreatedAt: w.CreatedAt,
		Link:      w.Link,
	}
}
