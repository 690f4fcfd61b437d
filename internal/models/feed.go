package models

import (
	"time"
)

type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	BeersCount  int       `json:"beers_count" gorm:"not null;default:0"`
	ImageURL    string    `json:"image_url" gorm:"not null"`
	AuthorID    uint      `json:"author_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author   User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Like is unique per (user, post).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_user_post;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}

// PostView is a post with its author's counters and the viewer's like state.
type PostView struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	BeersCount  int         `json:"beers_count"`
	ImageURL    string      `json:"image_url"`
	AuthorID    uint        `json:"author_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Author      UserProfile `json:"author"`
	LikesCount  int64       `json:"likes_count"`
	IsLiked     bool        `json:"is_liked"`
}

// PostsPage is one keyset page. Cursor is nil on the last page.
type PostsPage struct {
	Posts   []PostView `json:"posts"`
	HasMore bool       `json:"has_more"`
	Cursor  *uint      `json:"cursor"`
}

type CommentView struct {
	ID        uint        `json:"id"`
	Text      string      `json:"text"`
	UserID    uint        `json:"user_id"`
	PostID    uint        `json:"post_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	User      UserProfile `json:"user"`
}

type PostComments struct {
	PostID   uint          `json:"post_id"`
	Comments []CommentView `json:"comments"`
}

type NewPost struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	BeersCount  int     `json:"beers_count"`
	ImageURL    string  `json:"image_url"`
}
