package models

import "time"

type Chat struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId,omitempty"`
	ShopID        string     `json:"shopId,omitempty"`
	Title         string     `json:"title,omitempty"`
	LastMessage   string     `json:"lastMessage,omitempty"`
	UnreadCount   int        `json:"unreadCount"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	SenderID   string    `json:"senderId"`
	SenderRole UserRole  `json:"senderRole"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
