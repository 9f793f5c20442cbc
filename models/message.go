package models

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is one entry of the widget transcript. It only lives in the
// client session and is never stored by the relay.
type ChatMessage struct {
	Sender   string    `json:"sender"` // "user" or "bot"
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
	FileName string    `json:"fileName,omitempty"`
	FileURL  string    `json:"fileUrl,omitempty"`
}
