package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/notecourier/notecourier/internal/core"
	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/notecourier/notecourier/internal/expand"
	"github.com/notecourier/notecourier/internal/forum"
	"github.com/notecourier/notecourier/internal/markdown"
	"github.com/notecourier/notecourier/internal/vault"
	"golang.org/x/sync/errgroup"
)

// API lists the forum operations a publication drives.
type API interface {
	Uploader
	CreatePost(ctx context.Context, title, raw string, categoryID int, tags []string) (*discourse.PostRef, error)
	UpdatePost(ctx context.Context, postID, topicID int, title, raw string, categoryID int, tags []string) error
	FetchCategories(ctx context.Context) ([]discourse.Category, error)
	FetchTopicInfo(ctx context.Context, topicID int) (*discourse.TopicInfo, error)
}

// Options controls the optional text transforms and publication behaviors.
// Fields mirror the [publish] section of .ntc/config.
type Options struct {
	DefaultCategory    int
	DefaultTags        []string
	UseRemoteURL       bool
	RewriteMediaLinks  bool
	ConvertHighlights  bool
	RemoveTopHeadings  bool
	IgnoredHeadings    []string
	ForceFilenameTitle bool
}

// Transformers returns the enabled text transforms, in application order.
func (o Options) Transformers() []markdown.Transformer {
	var transformers []markdown.Transformer
	if o.ConvertHighlights {
		transformers = append(transformers, markdown.ConvertHighlights())
	}
	if len(o.IgnoredHeadings) > 0 {
		transformers = append(transformers, markdown.RemoveSections(o.IgnoredHeadings))
	}
	if o.RemoveTopHeadings {
		transformers = append(transformers, markdown.StripTopHeadings())
	}
	if len(o.IgnoredHeadings) > 0 || o.RemoveTopHeadings {
		// Deleting headings and sections leaves stacked blank lines behind
		transformers = append(transformers, markdown.SquashBlankLines())
	}
	return transformers
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Result describes a successful publication.
type Result struct {
	Action     string
	Title      string
	PostID     int
	TopicID    int
	CategoryID int
	Tags       []string
	URL        string
}

// CategoryChoice resolves a category conflict between the locally recorded
// category and the remote one. It must return true to keep the local category.
type CategoryChoice func(localName, remoteName string) bool

// Publisher drives a single publication: expand the note, upload its media,
// reconcile local metadata against the remote topic, create or update the
// post, and write the outcome back into the note's front matter.
type Publisher struct {
	vault   *vault.Vault
	api     API
	baseURL string
	options Options

	notify         func(message string)
	chooseCategory CategoryChoice
}

func NewPublisher(v *vault.Vault, api API, baseURL string, options Options) *Publisher {
	return &Publisher{
		vault:   v,
		api:     api,
		baseURL: baseURL,
		options: options,
		notify: func(message string) {
			core.CurrentLogger().Warn(message)
		},
	}
}

// OnNotify overrides the sink receiving non-blocking error reports.
func (p *Publisher) OnNotify(fn func(message string)) *Publisher {
	p.notify = fn
	return p
}

// OnCategoryConflict installs the blocking prompt used when the local and
// remote categories disagree. Without one, the remote category wins.
func (p *Publisher) OnCategoryConflict(fn CategoryChoice) *Publisher {
	p.chooseCategory = fn
	return p
}

func (p *Publisher) Publish(ctx context.Context, file *vault.File) (*Result, error) {
	if file == nil {
		return nil, fmt.Errorf("no file to publish")
	}
	raw, err := p.vault.ReadText(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q: %w", file, err)
	}

	record := forum.ReadRecord(raw, p.baseURL)
	expanded := expand.NewExpander(p.vault).Expand(file)
	// The note's own front matter must not end up in the post body
	_, body := markdown.SplitFrontMatter(expanded.String())

	categoryID := p.options.DefaultCategory
	tags := p.options.DefaultTags
	if record != nil {
		if record.CategoryID > 0 {
			categoryID = record.CategoryID
		}
		if len(record.Tags) > 0 {
			tags = record.Tags
		}
	}

	updating := record != nil && record.Published()
	if updating {
		categoryID, tags, err = p.reconcileRemoteState(ctx, record, categoryID, tags)
		if err != nil {
			return nil, err
		}
	}

	references := ExtractEmbedReferences(body)
	uploads := NewMediaHandler(p.vault, p.api).ProcessEmbeds(ctx, references, file.RelativePath, p.options.UseRemoteURL)
	body = ReplaceEmbedReferences(body, references, uploads)

	body = body.MustTransform(p.options.Transformers()...)

	title := p.title(file, raw)
	result := &Result{
		Title:      title,
		CategoryID: categoryID,
		Tags:       tags,
	}
	if updating {
		if err := p.api.UpdatePost(ctx, record.PostID, record.TopicID, title, body.String(), categoryID, tags); err != nil {
			return nil, err
		}
		result.Action = ActionUpdated
		result.PostID = record.PostID
		result.TopicID = record.TopicID
		result.URL = record.URL
		if result.URL == "" {
			result.URL = p.topicURL(title, "", record.TopicID)
		}
	} else {
		ref, err := p.api.CreatePost(ctx, title, body.String(), categoryID, tags)
		if err != nil {
			return nil, err
		}
		result.Action = ActionCreated
		result.PostID = ref.PostID
		result.TopicID = ref.TopicID
		result.URL = p.topicURL(title, ref.TopicSlug, ref.TopicID)
	}

	// The remote post now exists. A failure below is local bookkeeping only
	// and never rolls the publication back.
	p.commit(file, result, references, uploads)

	return result, nil
}

// reconcileRemoteState fetches the existing topic's tags and category and
// merges them with the locally recorded values. Remote tags are authoritative.
// A category disagreement blocks on the installed prompt.
func (p *Publisher) reconcileRemoteState(ctx context.Context, record *forum.Record, categoryID int, tags []string) (int, []string, error) {
	var topicInfo *discourse.TopicInfo
	var categories []discourse.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topicInfo, err = p.api.FetchTopicInfo(gctx, record.TopicID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = p.api.FetchCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	if len(topicInfo.Tags) > 0 {
		tags = topicInfo.Tags
	}

	localID := record.CategoryID
	remoteID := topicInfo.CategoryID
	switch {
	case remoteID == 0:
		// Keep the local category
	case localID == 0 || localID == remoteID:
		categoryID = remoteID
	default:
		localName := categoryName(categories, localID)
		remoteName := categoryName(categories, remoteID)
		if localName == "" || remoteName == "" || p.chooseCategory == nil {
			categoryID = remoteID
		} else if p.chooseCategory(localName, remoteName) {
			categoryID = localID
		} else {
			categoryID = remoteID
		}
	}

	return categoryID, tags, nil
}

// commit writes the publication outcome back into the on-disk note. The file
// is reread first as it may have changed since expansion.
func (p *Publisher) commit(file *vault.File, result *Result, references, uploads []string) {
	onDisk, err := p.vault.ReadText(file)
	if err != nil {
		p.notify(fmt.Sprintf("Published, but unable to reread %q: %v", file, err))
		return
	}
	updated, err := forum.WriteRecord(onDisk, p.baseURL, forum.Record{
		PostID:     result.PostID,
		TopicID:    result.TopicID,
		CategoryID: result.CategoryID,
		Tags:       result.Tags,
		URL:        result.URL,
	})
	if err != nil {
		p.notify(fmt.Sprintf("Published, but unable to update the front matter of %q: %v", file, err))
		return
	}
	if p.options.RewriteMediaLinks {
		updated = ReplaceEmbedReferences(markdown.Document(updated), references, uploads).String()
	}
	if updated == onDisk {
		// Nothing changed on disk, avoid a spurious file-modified event
		return
	}
	if err := p.vault.WriteText(file, updated); err != nil {
		p.notify(fmt.Sprintf("Published, but unable to write %q: %v", file, err))
	}
}

// title returns the post title: the front matter title when present, unless
// the configuration forces the filename.
func (p *Publisher) title(file *vault.File, raw string) string {
	if !p.options.ForceFilenameTitle {
		frontMatter, _ := markdown.SplitFrontMatter(raw)
		if mapping, err := frontMatter.AsMap(); err == nil {
			if title, ok := mapping["title"].(string); ok && title != "" {
				return title
			}
		}
	}
	return file.Title()
}

func (p *Publisher) topicURL(title, topicSlug string, topicID int) string {
	if topicSlug == "" {
		topicSlug = slug.Make(title)
		if topicSlug == "" {
			topicSlug = "topic"
		}
	}
	return fmt.Sprintf("%s/t/%s/%d", strings.TrimSuffix(p.baseURL, "/"), topicSlug, topicID)
}

func categoryName(categories []discourse.Category, id int) string {
	for _, category := range categories {
		if category.ID == id {
			return category.Name
		}
	}
	return ""
}
