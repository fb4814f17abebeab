package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ivanhom/blogicum/models"
)

func TestProfileGet(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "writer")

	w := doGet(r, "/api/v1/users/writer", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	require.Equal(t, "writer", data["username"])
	require.NotContains(t, w.Body.String(), "password")

	w = doGet(r, "/api/v1/users/nobody", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileListingOwnerSeesDrafts(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	author := createUser(t, db, "writer")
	stranger := createUser(t, db, "reader")
	now := time.Now()

	seedPost(t, db, author, "visible", true, now.Add(-2*time.Hour), nil)
	seedPost(t, db, author, "draft", false, now.Add(-time.Hour), nil)
	seedPost(t, db, author, "scheduled", true, now.Add(time.Hour), nil)

	// The owner sees all three, newest publication date first.
	w := doGet(r, "/api/v1/users/writer/posts", bearerToken(t, author))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"scheduled", "draft", "visible"}, listTitles(t, decodeData(t, w)))

	// Everyone else sees only the visible one.
	w = doGet(r, "/api/v1/users/writer/posts", bearerToken(t, stranger))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"visible"}, listTitles(t, decodeData(t, w)))

	w = doGet(r, "/api/v1/users/writer/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"visible"}, listTitles(t, decodeData(t, w)))
}

func TestUpdateProfileMismatchRedirectsHome(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	createUser(t, db, "writer")
	intruder := createUser(t, db, "intruder")

	w := doJSON(r, http.MethodPatch, "/api/v1/users/writer", bearerToken(t, intruder), map[string]interface{}{"bio": "hacked"})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/api/v1/posts", w.Header().Get("Location"))

	var got models.User
	require.NoError(t, db.Where("username = ?", "writer").First(&got).Error)
	require.Empty(t, got.Bio)
}

func TestUpdateProfileOwnSavesValues(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user := createUser(t, db, "writer")

	body := map[string]interface{}{"bio": "I write things", "email": "new@example.com"}
	w := doJSON(r, http.MethodPatch, "/api/v1/users/writer", bearerToken(t, user), body)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, "I write things", got.Bio)
	require.Equal(t, "new@example.com", got.Email)
}
