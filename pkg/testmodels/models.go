package testmodels

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a post author
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" gorm:"-" json:"-"`

	ID    int64  `bun:"id,pk,autoincrement" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name  string `bun:"name,notnull" gorm:"column:name;not null" json:"name"`
	Email string `bun:"email" gorm:"column:email" json:"email"`
	Role  string `bun:"role" gorm:"column:role" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (User) SearchFields() []string {
	return []string{"name", "email"}
}

// Post belongs to a user through UserID
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p" gorm:"-" json:"-"`

	ID      int64  `bun:"id,pk,autoincrement" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title   string `bun:"title,notnull" gorm:"column:title;not null" json:"title"`
	Content string `bun:"content" gorm:"column:content;size:2000" json:"content"`
	UserID  int64  `bun:"user_id,notnull" gorm:"column:user_id;not null;index" json:"userId"`
	Status  string `bun:"status" gorm:"column:status" json:"status"`
}

func (Post) TableName() string {
	return "posts"
}

func (Post) SearchFields() []string {
	return []string{"title", "content"}
}

// Comment is keyed by UUID and belongs to a post
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c" gorm:"-" json:"-"`

	ID     uuid.UUID `bun:"id,pk,type:uuid" gorm:"column:id;primaryKey;type:uuid" json:"id"`
	PostID int64     `bun:"post_id,notnull" gorm:"column:post_id;not null;index" json:"postId"`
	Body   string    `bun:"body" gorm:"column:body" json:"body"`
	Author string    `bun:"author" gorm:"column:author" json:"author"`
}

func (Comment) TableName() string {
	return "comments"
}

func (Comment) SearchFields() []string {
	return []string{"body", "author"}
}
