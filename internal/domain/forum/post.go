package forum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	AuthorID   string    `gorm:"column:author_id;type:varchar(255);not null;index" json:"authorId"`
	AuthorName string    `gorm:"column:author_name;type:varchar(64);not null" json:"authorName"`
	Likes      int       `gorm:"column:likes;not null;default:0;index" json:"likes"`
	ReplyCount int       `gorm:"column:reply_count;not null;default:0" json:"replyCount"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"-"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostLike records that one anonymous identity liked one post.
type PostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_like_post_user,priority:1" json:"postId"`
	UserID    string    `gorm:"column:user_id;type:varchar(255);not null;uniqueIndex:idx_post_like_post_user,priority:2" json:"userId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (PostLike) TableName() string { return "post_likes" }

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Reply struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index:idx_reply_post_created,priority:1" json:"postId"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	AuthorID   string    `gorm:"column:author_id;type:varchar(255);not null;index" json:"authorId"`
	AuthorName string    `gorm:"column:author_name;type:varchar(64);not null" json:"authorName"`
	CreatedAt  time.Time `gorm:"not null;index:idx_reply_post_created,priority:2" json:"createdAt"`
}

func (Reply) TableName() string { return "replies" }

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
