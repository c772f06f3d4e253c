package discourse_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *discourse.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return discourse.NewClient(server.URL, "key", "alice")
}

func TestUploadMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/uploads.json", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("Api-Key"))
		require.Equal(t, "alice", r.Header.Get("Api-Username"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "composer", r.FormValue("type"))
		assert.Equal(t, "true", r.FormValue("synchronous"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "diagram.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		fmt.Fprint(w, `{"short_url": "upload://abc.png", "url": "https://cdn.example.com/abc.png"}`)
	})

	upload, err := client.UploadMedia(context.Background(), "diagram.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "upload://abc.png", upload.ShortURL)
	assert.Equal(t, "https://cdn.example.com/abc.png", upload.FullURL)
}

func TestCreatePost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts.json", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "A Note", payload["title"])
		assert.Equal(t, float64(3), payload["category"])

		fmt.Fprint(w, `{"id": 42, "topic_id": 7, "topic_slug": "a-note"}`)
	})

	ref, err := client.CreatePost(context.Background(), "A Note", "body", 3, []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, 42, ref.PostID)
	assert.Equal(t, 7, ref.TopicID)
	assert.Equal(t, "a-note", ref.TopicSlug)
}

func TestCreatePostError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors": ["Title is too short", "Body is empty"]}`)
	})

	_, err := client.CreatePost(context.Background(), "x", "", 3, nil)
	require.Error(t, err)
	var apiError *discourse.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, http.StatusUnprocessableEntity, apiError.StatusCode)
	assert.Equal(t, "Title is too short\nBody is empty", apiError.Error())
}

func TestCreatePostErrorUnparseable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	})

	_, err := client.CreatePost(context.Background(), "x", "", 3, nil)
	require.Error(t, err)
	assert.Equal(t, "publish failed (502)", err.Error())
}

func TestUpdatePost(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		fmt.Fprint(w, `{}`)
	})

	err := client.UpdatePost(context.Background(), 42, 7, "A Note", "body", 3, []string{"go"})
	require.NoError(t, err)
	// The post body is updated first, then the topic
	assert.Equal(t, []string{"PUT /posts/42", "PUT /t/7"}, calls)
}

func TestFetchCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/categories.json", r.URL.Path)
		fmt.Fprint(w, `{"category_list": {"categories": [
			{"id": 1, "name": "General", "subcategory_list": [{"id": 4, "name": "Random"}]},
			{"id": 2, "name": "Announcements"}
		]}}`)
	})

	categories, err := client.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []discourse.Category{
		{ID: 1, Name: "General"},
		{ID: 4, Name: "General > Random"},
		{ID: 2, Name: "Announcements"},
	}, categories)
}

func TestFetchTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tags.json":
			fmt.Fprint(w, `{"tags": [{"name": "go"}, {"name": "notes"}]}`)
		case "/site.json":
			fmt.Fprint(w, `{"can_create_tag": true}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	tags, err := client.FetchTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []discourse.Tag{
		{Name: "go", CanCreate: true},
		{Name: "notes", CanCreate: true},
	}, tags)
}

func TestFetchTopicInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/t/7.json", r.URL.Path)
		fmt.Fprint(w, `{"tags": ["a", "b"], "category_id": 5}`)
	})

	info, err := client.FetchTopicInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, info.Tags)
	assert.Equal(t, 5, info.CategoryID)
}

func TestTestKey(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/users/alice.json", r.URL.Path)
			fmt.Fprint(w, `{"user": {"id": 1}}`)
		})
		assert.NoError(t, client.TestKey(context.Background()))
	})

	t.Run("Invalid", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		assert.Error(t, client.TestKey(context.Background()))
	})

	t.Run("Missing settings", func(t *testing.T) {
		client := discourse.NewClient("", "", "")
		assert.Error(t, client.TestKey(context.Background()))
	})
}
