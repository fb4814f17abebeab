package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ivanhom/blogicum/models"
)

func catID(id uint) *uint { return &id }

func TestCanViewPost(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	published := &models.Category{ID: 1, IsPublished: true}
	hidden := &models.Category{ID: 2, IsPublished: false}

	tests := []struct {
		name  string
		actor uint
		post  models.Post
		want  bool
	}{
		{
			name:  "published due uncategorized post visible to anyone",
			actor: AnonymousID,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: past},
			want:  true,
		},
		{
			name:  "published due post in published category visible",
			actor: AnonymousID,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: past, CategoryID: catID(1), Category: published},
			want:  true,
		},
		{
			name:  "draft hidden from strangers",
			actor: 2,
			post:  models.Post{AuthorID: 1, IsPublished: false, PubDate: past},
			want:  false,
		},
		{
			name:  "scheduled post hidden until due",
			actor: AnonymousID,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: future},
			want:  false,
		},
		{
			name:  "post in unpublished category hidden",
			actor: AnonymousID,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: past, CategoryID: catID(2), Category: hidden},
			want:  false,
		},
		{
			name:  "author sees own draft",
			actor: 1,
			post:  models.Post{AuthorID: 1, IsPublished: false, PubDate: past},
			want:  true,
		},
		{
			name:  "author sees own scheduled post",
			actor: 1,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: future},
			want:  true,
		},
		{
			name:  "author sees own post in unpublished category",
			actor: 1,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: past, CategoryID: catID(2), Category: hidden},
			want:  true,
		},
		{
			name:  "categorized post without preloaded category hidden",
			actor: AnonymousID,
			post:  models.Post{AuthorID: 1, IsPublished: true, PubDate: past, CategoryID: catID(1)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewPost(tt.actor, &tt.post, now))
		})
	}
}

func TestCanViewPostIgnoresLocationFlag(t *testing.T) {
	now := time.Now()
	loc := &models.Location{ID: 7, IsPublished: false}
	locID := loc.ID
	post := models.Post{
		AuthorID:    1,
		IsPublished: true,
		PubDate:     now.Add(-time.Minute),
		LocationID:  &locID,
		Location:    loc,
	}
	assert.True(t, CanViewPost(AnonymousID, &post, now))
}

func TestCanMutate(t *testing.T) {
	assert.True(t, CanMutate(3, 3))
	assert.False(t, CanMutate(3, 4))
	assert.False(t, CanMutate(AnonymousID, AnonymousID))
	assert.False(t, CanMutate(AnonymousID, 5))
}
