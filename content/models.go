// Package content implements the owned post resources: articles, boards
// and blogs. All three share one schema and one set of routes; they differ
// only in table, name and the store they are backed by.
package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post holds the columns shared by every resource
type Post struct {
	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Author    string    `bun:"author,notnull" json:"author"`
	Title     string    `bun:"title,notnull" json:"title"`
	Contents  string    `bun:"contents,notnull" json:"contents"`
	Status    Status    `bun:"status,notnull" json:"status"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Resource is implemented by the bun models of each post table
type Resource interface {
	Base() *Post
}

type Article struct {
	bun.BaseModel `bun:"table:articles,alias:art"`
	Post
}

func (a *Article) Base() *Post { return &a.Post }

type Board struct {
	bun.BaseModel `bun:"table:boards,alias:brd"`
	Post
}

func (b *Board) Base() *Post { return &b.Post }

type Blog struct {
	bun.BaseModel `bun:"table:blogs,alias:blg"`
	Post
}

func (b *Blog) Base() *Post { return &b.Post }

// Kind describes a resource: its display name, its plural used in paths
// and a constructor for empty records.
type Kind[R Resource] struct {
	Name   string
	Plural string
	New    func() R
}

var (
	Articles = Kind[*Article]{Name: "Article", Plural: "articles", New: func() *Article { return &Article{} }}
	Boards   = Kind[*Board]{Name: "Board", Plural: "boards", New: func() *Board { return &Board{} }}
	Blogs    = Kind[*Blog]{Name: "Blog", Plural: "blogs", New: func() *Blog { return &Blog{} }}
)

// clone copies every column of src into a new record
func (k Kind[R]) clone(src R) R {
	dst := k.New()
	*dst.Base() = *src.Base()
	return dst
}
