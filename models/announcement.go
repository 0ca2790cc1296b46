package models

// AnnouncementField is a name/value pair rendered inside an announcement
type AnnouncementField struct {
	Name   string
	Value  string
	Inline bool
}

// Announcement is a platform-neutral outbound message
type Announcement struct {
	Content          string
	Title            string
	Description      string
	Color            int
	Fields           []AnnouncementField
	ImageURL         string
	Footer           string
	ReplyToMessageID string
}

// HasEmbed reports whether the announcement carries anything beyond plain content
func (a *Announcement) HasEmbed() bool {
	return a.Title != "" || a.Description != "" || len(a.Fields) > 0 || a.ImageURL != "" || a.Footer != ""
}

// Reactor is a user who reacted to a message
type Reactor struct {
	UserID   int64
	Username string
	Bot      bool
}
