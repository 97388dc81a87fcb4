package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is an entry in the feed. Author name and avatar are snapshots taken when
// the post was written.
type Post struct {
	ID       string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	User     string    `gorm:"column:user_id;index;size:36;not null" json:"user" bson:"user"`
	Text     string    `gorm:"type:text;not null" json:"text" bson:"text"`
	Name     string    `json:"name" bson:"name"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Likes    []Like    `gorm:"serializer:json;type:text" json:"likes" bson:"likes"`
	Comments []Comment `gorm:"serializer:json;type:text" json:"comments" bson:"comments"`
	Date     time.Time `gorm:"index;not null" json:"date" bson:"date"`
}

// Like records that an account liked a post.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Comment is a reply embedded in a post.
type Comment struct {
	ID     string    `json:"_id" bson:"_id"`
	User   string    `json:"user" bson:"user"`
	Text   string    `json:"text" bson:"text"`
	Name   string    `json:"name" bson:"name"`
	Avatar string    `json:"avatar" bson:"avatar"`
	Date   time.Time `json:"date" bson:"date"`
}

// BeforeCreate assigns generated fields before the first insert.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	p.Prepare()
	return nil
}

// Prepare fills ids, timestamps and nil collections.
func (p *Post) Prepare() {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// LikedBy reports whether the account is in the like set.
func (p *Post) LikedBy(user string) bool {
	for _, l := range p.Likes {
		if SameID(l.User, user) {
			return true
		}
	}
	return false
}

// AddLike puts the account into the like set. Adding an existing member is a conflict.
func (p *Post) AddLike(user string) error {
	if p.LikedBy(user) {
		return NewConflictError(ReasonAlreadyLiked, "Post already liked")
	}
	p.Likes = prepend(p.Likes, Like{User: CanonicalID(user)})
	return nil
}

// RemoveLike takes the account out of the like set. Removing a non-member is a conflict.
func (p *Post) RemoveLike(user string) error {
	var ok bool
	p.Likes, ok = removeByID(p.Likes, user, func(l Like) string { return l.User })
	if !ok {
		return NewConflictError(ReasonNotLiked, "Post has not yet been liked")
	}
	return nil
}

// AddComment prepends the comment under a fresh sub-id and returns the stored comment.
func (p *Post) AddComment(c Comment) Comment {
	c.ID = NewID()
	c.User = CanonicalID(c.User)
	if c.Date.IsZero() {
		c.Date = time.Now().UTC()
	}
	p.Comments = prepend(p.Comments, c)
	return c
}

// FindComment returns the comment with the given sub-id.
func (p *Post) FindComment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if SameID(p.Comments[i].ID, id) {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// RemoveComment drops the comment with the given sub-id.
func (p *Post) RemoveComment(id string) bool {
	var ok bool
	p.Comments, ok = removeByID(p.Comments, id, func(c Comment) string { return c.ID })
	return ok
}
