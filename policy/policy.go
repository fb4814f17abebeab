// Package policy holds the authorization predicates shared by handlers and
// query scopes: who may see a post, and who may change a post or comment.
package policy

import (
	"time"

	"github.com/ivanhom/blogicum/models"
)

// AnonymousID is the actor id carried by unauthenticated requests.
const AnonymousID uint = 0

// CanViewPost reports whether the actor may see the post. Authors always see
// their own posts, drafts and scheduled ones included. Everyone else sees a
// post only when it is published, due, and its category (when set) is
// published. The post's Category must be preloaded for categorized posts.
//
// Location carries the same published flag but is deliberately not consulted,
// matching the system's observed behavior.
func CanViewPost(actorID uint, post *models.Post, now time.Time) bool {
	if actorID != AnonymousID && actorID == post.AuthorID {
		return true
	}
	if !post.IsPublished || post.PubDate.After(now) {
		return false
	}
	if post.CategoryID == nil {
		return true
	}
	return post.Category != nil && post.Category.IsPublished
}

// CanMutate reports whether the actor may edit or delete an entity owned by
// ownerID. Only the owner may; anonymous actors never may.
func CanMutate(actorID, ownerID uint) bool {
	return actorID != AnonymousID && actorID == ownerID
}
