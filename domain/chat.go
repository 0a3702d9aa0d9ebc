package domain

import "time"

// Conversation is a chat thread between two marketplace users.
type Conversation struct {
	ID          string `json:"id"`
	PeerName    string `json:"interlocutor"`
	UnreadCount int    `json:"no_leidos"`
}

// ChatMessage is the read-side view of one message. SenderIsSelf is
// derived locally by comparing the sender id to the session user, it
// never travels over the wire.
type ChatMessage struct {
	ID           string    `json:"id"`
	Body         string    `json:"contenido"`
	SenderID     string    `json:"emisor_id"`
	SenderIsSelf bool      `json:"-"`
	SentAt       time.Time `json:"enviado_en"`
}
