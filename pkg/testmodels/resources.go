package testmodels

import (
	"github.com/google/uuid"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/jsonserver"
	"github.com/bitechdev/RASpec/pkg/patch"
)

var PostStatuses = []string{"draft", "published", "archived"}

var UserResource = jsonserver.Resource[User, UserDTO, UserCreate, int64]{
	Name: "users",
	Fields: patch.Fields[User]{
		"name":  patch.String(func(u *User) *string { return &u.Name }),
		"email": patch.String(func(u *User) *string { return &u.Email }),
		"role":  patch.OneOf(func(u *User) *string { return &u.Role }, "admin", "editor", "author"),
	},
	Mapper: jsonserver.Mapper[User, UserDTO, UserCreate]{
		ToDTO: func(u *User) UserDTO {
			return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		},
		FromCreate: func(in UserCreate) (User, error) {
			return User{Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	},
	ParseID: jsonserver.Int64ID,
}

var PostResource = jsonserver.Resource[Post, PostDTO, PostCreate, int64]{
	Name: "posts",
	Fields: patch.Fields[Post]{
		"title":   patch.String(func(p *Post) *string { return &p.Title }),
		"content": patch.String(func(p *Post) *string { return &p.Content }),
		"userId":  patch.Int64(func(p *Post) *int64 { return &p.UserID }),
		"status":  patch.OneOf(func(p *Post) *string { return &p.Status }, PostStatuses...),
	},
	Mapper: jsonserver.Mapper[Post, PostDTO, PostCreate]{
		ToDTO: func(p *Post) PostDTO {
			return PostDTO{ID: p.ID, Title: p.Title, Content: p.Content, UserID: p.UserID, Status: p.Status}
		},
		FromCreate: func(in PostCreate) (Post, error) {
			return Post{Title: in.Title, Content: in.Content, UserID: in.UserID, Status: in.Status}, nil
		},
	},
	ParseID: jsonserver.Int64ID,
}

var CommentResource = jsonserver.Resource[Comment, CommentDTO, CommentCreate, uuid.UUID]{
	Name: "comments",
	Fields: patch.Fields[Comment]{
		"postId": patch.Int64(func(c *Comment) *int64 { return &c.PostID }),
		"body":   patch.String(func(c *Comment) *string { return &c.Body }),
		"author": patch.String(func(c *Comment) *string { return &c.Author }),
	},
	Mapper: jsonserver.Mapper[Comment, CommentDTO, CommentCreate]{
		ToDTO: func(c *Comment) CommentDTO {
			return CommentDTO{ID: c.ID, PostID: c.PostID, Body: c.Body, Author: c.Author}
		},
		FromCreate: func(in CommentCreate) (Comment, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return Comment{}, err
			}
			return Comment{ID: id, PostID: in.PostID, Body: in.Body, Author: in.Author}, nil
		},
	},
	ParseID: jsonserver.UUIDID,
}

// Models returns the example models, for migrations
func Models() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}}
}

// Endpoints builds the users, posts and comments endpoints on db
func Endpoints(db common.Database) ([]jsonserver.Endpoint, error) {
	users, err := jsonserver.NewEndpoint(db, UserResource)
	if err != nil {
		return nil, err
	}
	posts, err := jsonserver.NewEndpoint(db, PostResource)
	if err != nil {
		return nil, err
	}
	comments, err := jsonserver.NewEndpoint(db, CommentResource)
	if err != nil {
		return nil, err
	}
	return []jsonserver.Endpoint{users, posts, comments}, nil
}

// Register adds the example endpoints to server
func Register(server *jsonserver.Server, db common.Database) error {
	endpoints, err := Endpoints(db)
	if err != nil {
		return err
	}
	return server.Register(endpoints...)
}
