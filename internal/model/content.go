package model

import "time"

type ContentType string

const (
	ContentScreenshot ContentType = "screenshot"
	ContentDocument   ContentType = "document"
	ContentLink       ContentType = "link"
	ContentCode       ContentType = "code"
	ContentNotes      ContentType = "notes"
)

// ValidContentType reports whether t is one of the accepted kinds.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentScreenshot, ContentDocument, ContentLink, ContentCode, ContentNotes:
		return true
	}
	return false
}

// SharedContent is an immutable content artifact attributed to a seat.
// FileURL points at the blob store for uploaded files; Link holds the
// raw URL for link shares. Code and notes kinds carry their body in
// Description.
type SharedContent struct {
	ID          string      `json:"id" bson:"_id"`
	SeatID      string      `json:"seatId" bson:"seatId"`
	ClassroomID string      `json:"classroomId" bson:"classroomId"`
	StudentID   string      `json:"studentId" bson:"studentId"`
	ContentType ContentType `json:"contentType" bson:"contentType"`
	Link        string      `json:"link,omitempty" bson:"link,omitempty"`
	FileURL     string      `json:"fileUrl,omitempty" bson:"fileUrl,omitempty"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	SharedAt    time.Time   `json:"sharedAt" bson:"sharedAt"`
}

// URL returns the retrievable location of the content: the blob store
// URL for uploads, otherwise the shared link itself.
func (c *SharedContent) URL() string {
	if c.FileURL != "" {
		return c.FileURL
	}
	return c.Link
}
