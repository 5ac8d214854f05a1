package testmodels

import "github.com/google/uuid"

type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserCreate struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin editor author"`
}

type PostDTO struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"userId"`
	Status  string `json:"status"`
}

type PostCreate struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"max=2000"`
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Status  string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type CommentDTO struct {
	ID     uuid.UUID `json:"id"`
	PostID int64     `json:"postId"`
	Body   string    `json:"body"`
	Author string    `json:"author"`
}

type CommentCreate struct {
	PostID int64  `json:"postId" validate:"required,gt=0"`
	Body   string `json:"body" validate:"required"`
	Author string `json:"author"`
}
