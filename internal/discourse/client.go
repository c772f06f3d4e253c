// Package discourse is a client for the subset of the Discourse REST API
// needed to publish notes: uploads, posts, topics, categories and tags.
package discourse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/notecourier/notecourier/internal/medias"
)

// Upload is the result of a media upload. Discourse returns both a short
// `upload://` reference and a fully-qualified URL.
type Upload struct {
	ShortURL string
	FullURL  string
}

// PostRef addresses a post and its topic. Both ids are needed to update.
type PostRef struct {
	PostID    int
	TopicID   int
	TopicSlug string
}

type Category struct {
	ID   int
	Name string
}

type Tag struct {
	Name      string
	CanCreate bool
}

// TopicInfo is the remote state of an existing topic.
type TopicInfo struct {
	Tags       []string
	CategoryID int
}

// Client talks to a single Discourse forum.
type Client struct {
	baseURL  string
	apiKey   string
	username string
	http     *http.Client
}

func NewClient(baseURL, apiKey, username string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		username: username,
		http:     http.DefaultClient,
	}
}

// BaseURL returns the forum base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadMedia uploads a binary through /uploads.json (composer, synchronous).
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (*Upload, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", medias.MimeType(filename))
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := form.WriteField("type", "composer"); err != nil {
		return nil, err
	}
	if err := form.WriteField("synchronous", "true"); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads.json", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authenticate(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, newAPIError("upload", res.StatusCode, raw)
	}

	var decoded struct {
		ShortURL string `json:"short_url"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unable to decode upload response: %w", err)
	}
	return &Upload{ShortURL: decoded.ShortURL, FullURL: decoded.URL}, nil
}

// CreatePost creates a new topic through /posts.json.
func (c *Client) CreatePost(ctx context.Context, title, raw string, categoryID int, tags []string) (*PostRef, error) {
	payload := map[string]any{
		"title":    title,
		"raw":      raw,
		"category": categoryID,
		"tags":     notNil(tags),
	}

	var decoded struct {
		ID        int    `json:"id"`
		TopicID   int    `json:"topic_id"`
		TopicSlug string `json:"topic_slug"`
	}
	if err := c.doJSON(ctx, "publish", http.MethodPost, "/posts.json", payload, &decoded); err != nil {
		return nil, err
	}
	if decoded.ID == 0 {
		return nil, &APIError{Operation: "publish", StatusCode: http.StatusOK, Messages: []string{"response carries no post id"}}
	}
	return &PostRef{PostID: decoded.ID, TopicID: decoded.TopicID, TopicSlug: decoded.TopicSlug}, nil
}

// UpdatePost updates an existing post's content, then its topic's title,
// category and tags. Two calls, post body first.
func (c *Client) UpdatePost(ctx context.Context, postID, topicID int, title, raw string, categoryID int, tags []string) error {
	postPayload := map[string]any{
		"raw":         raw,
		"edit_reason": "Updated from vault",
	}
	if err := c.doJSON(ctx, "update", http.MethodPut, fmt.Sprintf("/posts/%d", postID), postPayload, nil); err != nil {
		return err
	}

	topicPayload := map[string]any{
		"title":       title,
		"category_id": categoryID,
		"tags":        notNil(tags),
	}
	return c.doJSON(ctx, "update", http.MethodPut, fmt.Sprintf("/t/%d", topicID), topicPayload, nil)
}

// FetchCategories returns the forum's categories, flattened: subcategories
// appear with a composed `Parent > Child` display name.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	var decoded struct {
		CategoryList struct {
			Categories []struct {
				ID              int    `json:"id"`
				Name            string `json:"name"`
				SubcategoryList []struct {
					ID   int    `json:"id"`
					Name string `json:"name"`
				} `json:"subcategory_list"`
			} `json:"categories"`
		} `json:"category_list"`
	}
	if err := c.doJSON(ctx, "fetch categories", http.MethodGet, "/categories.json?include_subcategories=true", nil, &decoded); err != nil {
		return nil, err
	}

	var categories []Category
	for _, category := range decoded.CategoryList.Categories {
		categories = append(categories, Category{ID: category.ID, Name: category.Name})
		for _, subcategory := range category.SubcategoryList {
			categories = append(categories, Category{
				ID:   subcategory.ID,
				Name: category.Name + " > " + subcategory.Name,
			})
		}
	}
	return categories, nil
}

// FetchTags returns the forum's tags with the caller's tag-creation right.
func (c *Client) FetchTags(ctx context.Context) ([]Tag, error) {
	var decoded struct {
		Tags []struct {
			Name string `json:"name"`
		} `json:"tags"`
	}
	if err := c.doJSON(ctx, "fetch tags", http.MethodGet, "/tags.json", nil, &decoded); err != nil {
		return nil, err
	}

	canCreate, err := c.CanCreateTags(ctx)
	if err != nil {
		canCreate = false
	}

	var tags []Tag
	for _, tag := range decoded.Tags {
		tags = append(tags, Tag{Name: tag.Name, CanCreate: canCreate})
	}
	return tags, nil
}

// CanCreateTags checks through /site.json if the account may create new tags.
func (c *Client) CanCreateTags(ctx context.Context) (bool, error) {
	var decoded struct {
		CanCreateTag bool `json:"can_create_tag"`
	}
	if err := c.doJSON(ctx, "fetch site", http.MethodGet, "/site.json", nil, &decoded); err != nil {
		return false, err
	}
	return decoded.CanCreateTag, nil
}

// FetchTopicInfo returns the remote tags and category of an existing topic.
func (c *Client) FetchTopicInfo(ctx context.Context, topicID int) (*TopicInfo, error) {
	var decoded struct {
		Tags       []string `json:"tags"`
		CategoryID int      `json:"category_id"`
	}
	if err := c.doJSON(ctx, "fetch topic", http.MethodGet, fmt.Sprintf("/t/%d.json", topicID), nil, &decoded); err != nil {
		return nil, err
	}
	return &TopicInfo{Tags: decoded.Tags, CategoryID: decoded.CategoryID}, nil
}

// TestKey validates the base URL, username and API key together.
func (c *Client) TestKey(ctx context.Context) error {
	if c.baseURL == "" || c.apiKey == "" || c.username == "" {
		return fmt.Errorf("incomplete forum settings: base URL, username and API key are all required")
	}
	var decoded struct {
		User *struct {
			ID int `json:"id"`
		} `json:"user"`
	}
	if err := c.doJSON(ctx, "check key", http.MethodGet, "/users/"+c.username+".json", nil, &decoded); err != nil {
		return err
	}
	if decoded.User == nil {
		return &APIError{Operation: "check key", StatusCode: http.StatusOK, Messages: []string{"response carries no user"}}
	}
	return nil
}

/*
 * Plumbing
 */

func (c *Client) authenticate(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Api-Username", c.username)
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authenticate(req)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return newAPIError(operation, res.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unable to decode %s response: %w", operation, err)
	}
	return nil
}

func notNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
