package models

// MessageKind tags the origin of a message.
type MessageKind string

const (
	KindUser         MessageKind = "user"
	KindAnnouncement MessageKind = "admin-announcement"
	KindDM           MessageKind = "dm"
)

// Message is one immutable entry in a room's log. TS is assigned by the
// store at write time and orders the room.
type Message struct {
	ID      string      `json:"id"`
	Room    string      `json:"room"`
	Sender  string      `json:"sender"`
	Content string      `json:"content"`
	TS      int64       `json:"ts"`
	Kind    MessageKind `json:"kind"`
}
