package publish_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/notecourier/notecourier/internal/forum"
	"github.com/notecourier/notecourier/internal/publish"
	"github.com/notecourier/notecourier/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://forum.example.com"

type postCall struct {
	postID     int
	topicID    int
	title      string
	raw        string
	categoryID int
	tags       []string
}

type fakeAPI struct {
	fakeUploader
	postRef    *discourse.PostRef
	createErr  error
	updateErr  error
	categories []discourse.Category
	topicInfo  *discourse.TopicInfo

	creates []postCall
	updates []postCall
}

func (f *fakeAPI) CreatePost(ctx context.Context, title, raw string, categoryID int, tags []string) (*discourse.PostRef, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, postCall{title: title, raw: raw, categoryID: categoryID, tags: tags})
	return f.postRef, nil
}

func (f *fakeAPI) UpdatePost(ctx context.Context, postID, topicID int, title, raw string, categoryID int, tags []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, postCall{postID: postID, topicID: topicID, title: title, raw: raw, categoryID: categoryID, tags: tags})
	return nil
}

func (f *fakeAPI) FetchCategories(ctx context.Context) ([]discourse.Category, error) {
	return f.categories, nil
}

func (f *fakeAPI) FetchTopicInfo(ctx context.Context, topicID int) (*discourse.TopicInfo, error) {
	if f.topicInfo == nil {
		return &discourse.TopicInfo{}, nil
	}
	return f.topicInfo, nil
}

func readRecord(t *testing.T, v *vault.Vault, path string) *forum.Record {
	t.Helper()
	content, err := v.ReadText(v.Get(path))
	require.NoError(t, err)
	return forum.ReadRecord(content, baseURL)
}

func TestPublishCreate(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md":       "---\ntitle: Learning Go\n---\nIntro\n![[Extra]]\n![[diagram.png]]\n",
		"Extra.md":    "More details\n",
		"diagram.png": "PNG",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10, TopicSlug: "learning-go"}}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{
		DefaultCategory: 4,
		DefaultTags:     []string{"notes"},
	})

	result, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)

	assert.Equal(t, publish.ActionCreated, result.Action)
	assert.Equal(t, 1, result.PostID)
	assert.Equal(t, 10, result.TopicID)
	assert.Equal(t, "https://forum.example.com/t/learning-go/10", result.URL)

	require.Len(t, api.creates, 1)
	call := api.creates[0]
	assert.Equal(t, "Learning Go", call.title)
	assert.Equal(t, 4, call.categoryID)
	assert.Equal(t, []string{"notes"}, call.tags)
	assert.Contains(t, call.raw, "More details")
	assert.Contains(t, call.raw, "![diagram.png](upload://diagram.png)")
	assert.NotContains(t, call.raw, "title:")

	record := readRecord(t, v, "go.md")
	require.NotNil(t, record)
	assert.Equal(t, 1, record.PostID)
	assert.Equal(t, 10, record.TopicID)
	assert.Equal(t, 4, record.CategoryID)
	assert.Equal(t, []string{"notes"}, record.Tags)
	assert.Equal(t, "https://forum.example.com/t/learning-go/10", record.URL)
}

func TestPublishCreateVsUpdateBranching(t *testing.T) {
	// Only topic_id is known. An incomplete record selects create-mode.
	v := setUpVault(t, map[string]string{
		"go.md": "---\nforum_example:\n  topic_id: 10\n---\nBody\n",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 2, TopicID: 20}}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{DefaultCategory: 1})

	result, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)
	assert.Equal(t, publish.ActionCreated, result.Action)
	assert.Len(t, api.creates, 1)
	assert.Empty(t, api.updates)
}

func TestPublishUpdateTagAuthority(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md": `---
title: Learning Go
forum_example:
  post_id: 1
  topic_id: 10
  category_id: 3
  tags:
  - c
forum_example_url: https://forum.example.com/t/learning-go/10
---
Body
`,
	})
	api := &fakeAPI{
		categories: []discourse.Category{{ID: 3, Name: "General"}},
		topicInfo:  &discourse.TopicInfo{Tags: []string{"a", "b"}, CategoryID: 3},
	}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{})

	result, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)
	assert.Equal(t, publish.ActionUpdated, result.Action)

	require.Len(t, api.updates, 1)
	call := api.updates[0]
	assert.Equal(t, 1, call.postID)
	assert.Equal(t, 10, call.topicID)
	// Remote tags win over the locally cached ones
	assert.Equal(t, []string{"a", "b"}, call.tags)

	record := readRecord(t, v, "go.md")
	require.NotNil(t, record)
	assert.Equal(t, []string{"a", "b"}, record.Tags)
}

func TestPublishCategoryConflict(t *testing.T) {
	newVault := func(t *testing.T) *vault.Vault {
		return setUpVault(t, map[string]string{
			"go.md": "---\nforum_example:\n  post_id: 1\n  topic_id: 10\n  category_id: 3\n---\nBody\n",
		})
	}
	categories := []discourse.Category{{ID: 3, Name: "General"}, {ID: 7, Name: "Announcements"}}

	t.Run("Keep local", func(t *testing.T) {
		v := newVault(t)
		api := &fakeAPI{categories: categories, topicInfo: &discourse.TopicInfo{CategoryID: 7}}
		var prompted []string
		publisher := publish.NewPublisher(v, api, baseURL, publish.Options{}).
			OnCategoryConflict(func(localName, remoteName string) bool {
				prompted = []string{localName, remoteName}
				return true
			})

		_, err := publisher.Publish(context.Background(), v.Get("go.md"))
		require.NoError(t, err)

		assert.Equal(t, []string{"General", "Announcements"}, prompted)
		require.Len(t, api.updates, 1)
		assert.Equal(t, 3, api.updates[0].categoryID)
		assert.Equal(t, 3, readRecord(t, v, "go.md").CategoryID)
	})

	t.Run("Use remote", func(t *testing.T) {
		v := newVault(t)
		api := &fakeAPI{categories: categories, topicInfo: &discourse.TopicInfo{CategoryID: 7}}
		publisher := publish.NewPublisher(v, api, baseURL, publish.Options{}).
			OnCategoryConflict(func(localName, remoteName string) bool { return false })

		_, err := publisher.Publish(context.Background(), v.Get("go.md"))
		require.NoError(t, err)
		assert.Equal(t, 7, api.updates[0].categoryID)
		assert.Equal(t, 7, readRecord(t, v, "go.md").CategoryID)
	})

	t.Run("Unresolvable name skips the prompt", func(t *testing.T) {
		v := newVault(t)
		// The local category 3 is unknown remotely, the remote value wins
		api := &fakeAPI{categories: []discourse.Category{{ID: 7, Name: "Announcements"}}, topicInfo: &discourse.TopicInfo{CategoryID: 7}}
		publisher := publish.NewPublisher(v, api, baseURL, publish.Options{}).
			OnCategoryConflict(func(localName, remoteName string) bool {
				t.Fatal("must not prompt")
				return true
			})

		_, err := publisher.Publish(context.Background(), v.Get("go.md"))
		require.NoError(t, err)
		assert.Equal(t, 7, api.updates[0].categoryID)
	})
}

func TestPublishTransforms(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md": "# Top\nKeep ==this== visible.\n## Draft\nHidden\n## Final\nShown\n",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{
		ConvertHighlights: true,
		RemoveTopHeadings: true,
		IgnoredHeadings:   []string{"Draft"},
	})

	_, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)

	raw := api.creates[0].raw
	assert.NotContains(t, raw, "# Top")
	assert.NotContains(t, raw, "Hidden")
	assert.Contains(t, raw, "**this**")
	assert.Contains(t, raw, "Shown")
}

func TestPublishSquashesBlankLinesAfterRemoval(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md": "Intro\n\n# Top\n\nShown\n",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{
		RemoveTopHeadings: true,
	})

	_, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)

	// Deleting the heading line must not leave its blank lines stacked
	raw := api.creates[0].raw
	assert.NotContains(t, raw, "# Top")
	assert.NotContains(t, raw, "\n\n\n")
	assert.Equal(t, "Intro\n\nShown\n", raw)
}

func TestPublishTitlePrecedence(t *testing.T) {
	t.Run("Front matter title", func(t *testing.T) {
		v := setUpVault(t, map[string]string{"go.md": "---\ntitle: Learning Go\n---\nBody\n"})
		api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
		_, err := publish.NewPublisher(v, api, baseURL, publish.Options{}).Publish(context.Background(), v.Get("go.md"))
		require.NoError(t, err)
		assert.Equal(t, "Learning Go", api.creates[0].title)
	})

	t.Run("Forced filename", func(t *testing.T) {
		v := setUpVault(t, map[string]string{"go.md": "---\ntitle: Learning Go\n---\nBody\n"})
		api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
		_, err := publish.NewPublisher(v, api, baseURL, publish.Options{ForceFilenameTitle: true}).Publish(context.Background(), v.Get("go.md"))
		require.NoError(t, err)
		assert.Equal(t, "go", api.creates[0].title)
	})
}

func TestPublishUploadFailureKeepsEmbed(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md":       "Intro\n![[diagram.png]]\n",
		"diagram.png": "PNG",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
	api.fakeUploader.err = fmt.Errorf("boom")
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{}).
		OnNotify(func(message string) {})

	_, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)
	assert.Contains(t, api.creates[0].raw, "![[diagram.png]]")
}

func TestPublishAPIFailure(t *testing.T) {
	v := setUpVault(t, map[string]string{"go.md": "Body\n"})
	api := &fakeAPI{createErr: fmt.Errorf("post failed (502)")}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{})

	_, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.Error(t, err)

	// No partial metadata commit on failure
	content, readErr := v.ReadText(v.Get("go.md"))
	require.NoError(t, readErr)
	assert.Equal(t, "Body\n", content)
}

func TestPublishRewriteMediaLinks(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"go.md":       "Intro\n![[diagram.png]]\n",
		"diagram.png": "PNG",
	})
	api := &fakeAPI{postRef: &discourse.PostRef{PostID: 1, TopicID: 10}}
	publisher := publish.NewPublisher(v, api, baseURL, publish.Options{RewriteMediaLinks: true})

	_, err := publisher.Publish(context.Background(), v.Get("go.md"))
	require.NoError(t, err)

	content, readErr := v.ReadText(v.Get("go.md"))
	require.NoError(t, readErr)
	assert.Contains(t, content, "![diagram.png](upload://diagram.png)")
	assert.NotContains(t, content, "![[diagram.png]]")
}
