package api

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Approved  bool      `json:"approved"`
}

// CommentProto is a reader's comment submission.
type CommentProto struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Content string `json:"content" binding:"required"`
}

// CommentReceipt acknowledges a submission awaiting moderation.
type CommentReceipt struct {
	Comment Comment `json:"comment"`
	Message string  `json:"message"`
}
