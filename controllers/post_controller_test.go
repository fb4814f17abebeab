package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ivanhom/blogicum/models"
)

func seedCategory(t *testing.T, db *gorm.DB, slug string, published bool) models.Category {
	t.Helper()
	category := models.Category{Title: "Cat " + slug, Slug: slug, IsPublished: published}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedPost(t *testing.T, db *gorm.DB, author models.User, title string, published bool, pubDate time.Time, categoryID *uint) models.Post {
	t.Helper()
	post := models.Post{
		Title:       title,
		Text:        "body of " + title,
		AuthorID:    author.ID,
		IsPublished: published,
		PubDate:     pubDate,
		CategoryID:  categoryID,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func listTitles(t *testing.T, data map[string]interface{}) []string {
	t.Helper()
	raw, ok := data["items"].([]interface{})
	require.True(t, ok)
	titles := make([]string, 0, len(raw))
	for _, it := range raw {
		m := it.(map[string]interface{})
		titles = append(titles, m["title"].(string))
	}
	return titles
}

func TestHomeListingShowsOnlyVisiblePosts(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	now := time.Now()

	published := seedCategory(t, db, "travel", true)
	hidden := seedCategory(t, db, "secret", false)

	seedPost(t, db, author, "older visible", true, now.Add(-2*time.Hour), nil)
	seedPost(t, db, author, "newer visible", true, now.Add(-time.Hour), &published.ID)
	seedPost(t, db, author, "draft", false, now.Add(-time.Hour), nil)
	seedPost(t, db, author, "scheduled", true, now.Add(time.Hour), nil)
	seedPost(t, db, author, "hidden category", true, now.Add(-time.Hour), &hidden.ID)

	w := doGet(r, "/api/v1/posts", "")
	require.Equal(t, http.StatusOK, w.Code)

	titles := listTitles(t, decodeData(t, w))
	require.Equal(t, []string{"newer visible", "older visible"}, titles)
}

func TestHomeListingClampsPageBeyondEnd(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	now := time.Now()

	// 7 visible posts with page size 5: page 2 holds the 2 oldest.
	for i := 0; i < 7; i++ {
		seedPost(t, db, author, fmt.Sprintf("post %d", i), true, now.Add(-time.Duration(i+1)*time.Minute), nil)
	}

	w := doGet(r, "/api/v1/posts?page=99", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	titles := listTitles(t, data)
	require.Equal(t, []string{"post 5", "post 6"}, titles)

	pagination := data["pagination"].(map[string]interface{})
	require.Equal(t, float64(2), pagination["page"])
	require.Equal(t, float64(2), pagination["total_pages"])
	require.Equal(t, float64(7), pagination["total"])
}

func TestCategoryListing(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	now := time.Now()

	travel := seedCategory(t, db, "travel", true)
	secret := seedCategory(t, db, "secret", false)

	seedPost(t, db, author, "travel due", true, now.Add(-time.Hour), &travel.ID)
	seedPost(t, db, author, "travel scheduled", true, now.Add(time.Hour), &travel.ID)
	seedPost(t, db, author, "travel draft", false, now.Add(-time.Hour), &travel.ID)

	w := doGet(r, "/api/v1/categories/travel/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	titles := listTitles(t, decodeData(t, w))
	require.Equal(t, []string{"travel due"}, titles)

	// Unpublished category is a 404 even though it exists.
	w = doGet(r, "/api/v1/categories/"+secret.Slug+"/posts", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(r, "/api/v1/categories/missing/posts", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetailVisibility(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	stranger := createUser(t, db, "reader")
	now := time.Now()

	draft := seedPost(t, db, author, "draft", false, now.Add(-time.Hour), nil)
	detail := fmt.Sprintf("/api/v1/posts/%d", draft.ID)

	// Hidden from anonymous readers and other users alike.
	require.Equal(t, http.StatusNotFound, doGet(r, detail, "").Code)
	require.Equal(t, http.StatusNotFound, doGet(r, detail, bearerToken(t, stranger)).Code)

	// The author still sees it.
	w := doGet(r, detail, bearerToken(t, author))
	require.Equal(t, http.StatusOK, w.Code)
	post := decodeData(t, w)["post"].(map[string]interface{})
	require.Equal(t, "draft", post["title"])
}

func TestDetailCommentsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	now := time.Now()

	post := seedPost(t, db, author, "with comments", true, now.Add(-time.Hour), nil)
	older := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first", CreatedAt: now.Add(-30 * time.Minute)}
	newer := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "second", CreatedAt: now.Add(-10 * time.Minute)}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&older).Error)

	w := doGet(r, fmt.Sprintf("/api/v1/posts/%d", post.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	comments := decodeData(t, w)["comments"].([]interface{})
	require.Len(t, comments, 2)
	require.Equal(t, "first", comments[0].(map[string]interface{})["text"])
	require.Equal(t, "second", comments[1].(map[string]interface{})["text"])
}

func TestCreatePostForcesAuthorAndRedirects(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	other := createUser(t, db, "impostor-target")

	body := map[string]interface{}{
		"title":     "my post",
		"text":      "hello",
		"author_id": other.ID, // ignored
	}
	w := doJSON(r, http.MethodPost, "/api/v1/posts", bearerToken(t, author), body)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/api/v1/users/writer/posts", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, db.Where("title = ?", "my post").First(&post).Error)
	require.Equal(t, author.ID, post.AuthorID)
	require.True(t, post.IsPublished)
	require.False(t, post.PubDate.IsZero())
}

func TestCreateThenFetchRoundTrip(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	travel := seedCategory(t, db, "travel", true)
	token := bearerToken(t, author)

	pubDate := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	body := map[string]interface{}{
		"title":        "scheduled piece",
		"text":         "full text",
		"pub_date":     pubDate.Format(time.RFC3339),
		"category_id":  travel.ID,
		"is_published": true,
	}
	w := doJSON(r, http.MethodPost, "/api/v1/posts", token, body)
	require.Equal(t, http.StatusFound, w.Code)

	var created models.Post
	require.NoError(t, db.Where("title = ?", "scheduled piece").First(&created).Error)

	// The author can fetch it back immediately even though it is not due yet.
	w = doGet(r, fmt.Sprintf("/api/v1/posts/%d", created.ID), token)
	require.Equal(t, http.StatusOK, w.Code)
	post := decodeData(t, w)["post"].(map[string]interface{})
	require.Equal(t, "scheduled piece", post["title"])
	require.Equal(t, "full text", post["text"])
	require.Equal(t, float64(travel.ID), post["category_id"])
	require.Equal(t, true, post["is_published"])
	require.Equal(t, float64(author.ID), post["author_id"])

	got, err := time.Parse(time.RFC3339, post["pub_date"].(string))
	require.NoError(t, err)
	require.True(t, got.Equal(pubDate))
}

func TestCreatePostRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(r, http.MethodPost, "/api/v1/posts", "", map[string]interface{}{"title": "x", "text": "y"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")

	body := map[string]interface{}{"title": "x", "text": "y", "category_id": 999}
	w := doJSON(r, http.MethodPost, "/api/v1/posts", bearerToken(t, author), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePostByNonOwnerRedirectsUnchanged(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	intruder := createUser(t, db, "intruder")
	post := seedPost(t, db, author, "original", true, time.Now().Add(-time.Hour), nil)

	body := map[string]interface{}{"title": "hijacked", "text": "changed"}
	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID), bearerToken(t, intruder), body)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, fmt.Sprintf("/api/v1/posts/%d", post.ID), w.Header().Get("Location"))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	require.Equal(t, "original", got.Title)
}

func TestUpdatePostByOwnerKeepsCreatedAt(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	post := seedPost(t, db, author, "original", true, time.Now().Add(-time.Hour), nil)

	var before models.Post
	require.NoError(t, db.First(&before, post.ID).Error)

	body := map[string]interface{}{"title": "edited", "text": "new body", "is_published": false}
	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID), bearerToken(t, author), body)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, fmt.Sprintf("/api/v1/posts/%d", post.ID), w.Header().Get("Location"))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	require.Equal(t, "edited", got.Title)
	require.False(t, got.IsPublished)
	require.WithinDuration(t, before.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestDeletePostConfirmThenDelete(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	post := seedPost(t, db, author, "doomed", true, time.Now().Add(-time.Hour), nil)
	comment := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "goes too"}
	require.NoError(t, db.Create(&comment).Error)

	token := bearerToken(t, author)
	detail := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	// Confirmation read does not delete anything.
	w := doGet(r, detail+"/delete", token)
	require.Equal(t, http.StatusOK, w.Code)
	confirmPost := decodeData(t, w)["post"].(map[string]interface{})
	require.Equal(t, "doomed", confirmPost["title"])

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	w = doJSON(r, http.MethodDelete, detail, token, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/api/v1/posts", w.Header().Get("Location"))

	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestDeletePostByNonOwnerRedirects(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	intruder := createUser(t, db, "intruder")
	post := seedPost(t, db, author, "safe", true, time.Now().Add(-time.Hour), nil)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), bearerToken(t, intruder), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, fmt.Sprintf("/api/v1/posts/%d", post.ID), w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
