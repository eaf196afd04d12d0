package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"softwareprosweb/internal/domain"

	"github.com/google/uuid"
)

type PostsStore interface {
	CreatePost(ctx context.Context, slug, title, summary, body, authorID string) (domain.BlogPost, error)
	UpdatePost(ctx context.Context, id, slug, title, summary, body string) (domain.BlogPost, error)
	SetPublished(ctx context.Context, id string, published bool, when time.Time) error
	DeletePost(ctx context.Context, id string) error
	GetPostByID(ctx context.Context, id string) (domain.BlogPost, error)
	GetPublishedBySlug(ctx context.Context, slug string) (domain.BlogPost, error)
	ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]domain.BlogPost, error)
}

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
	maxSlugLen    = 80

	defaultPageSize = 20
	maxPageSize     = 100
)

type BlogService struct {
	Posts PostsStore
	Now   func() time.Time
}

func (s *BlogService) ListPublished(ctx context.Context, limit, offset int) ([]domain.BlogPost, error) {
	return s.Posts.ListPosts(ctx, true, clampLimit(limit), max(offset, 0))
}

func (s *BlogService) GetPublished(ctx context.Context, slug string) (domain.BlogPost, error) {
	return s.Posts.GetPublishedBySlug(ctx, strings.TrimSpace(slug))
}

func (s *BlogService) ListAll(ctx context.Context, limit, offset int) ([]domain.BlogPost, error) {
	return s.Posts.ListPosts(ctx, false, clampLimit(limit), max(offset, 0))
}

func (s *BlogService) Get(ctx context.Context, id string) (domain.BlogPost, error) {
	return s.Posts.GetPostByID(ctx, id)
}

func (s *BlogService) Create(ctx context.Context, authorID, title, summary, body string) (domain.BlogPost, error) {
	title, summary, body, err := validatePostInput(title, summary, body)
	if err != nil {
		return domain.BlogPost{}, err
	}

	slug := Slugify(title)
	p, err := s.Posts.CreatePost(ctx, slug, title, summary, body, authorID)
	if errors.Is(err, domain.ErrSlugTaken) {
		// Same title as an existing post; disambiguate once and give up
		// after that rather than looping.
		p, err = s.Posts.CreatePost(ctx, disambiguateSlug(slug), title, summary, body, authorID)
	}
	return p, err
}

func (s *BlogService) Update(ctx context.Context, id, title, summary, body string) (domain.BlogPost, error) {
	title, summary, body, err := validatePostInput(title, summary, body)
	if err != nil {
		return domain.BlogPost{}, err
	}

	existing, err := s.Posts.GetPostByID(ctx, id)
	if err != nil {
		return domain.BlogPost{}, err
	}

	// Keep the slug stable while the title is unchanged: published URLs
	// should not move under an edit to the body.
	slug := existing.Slug
	if title != existing.Title {
		slug = Slugify(title)
	}

	p, err := s.Posts.UpdatePost(ctx, id, slug, title, summary, body)
	if errors.Is(err, domain.ErrSlugTaken) && slug != existing.Slug {
		p, err = s.Posts.UpdatePost(ctx, id, disambiguateSlug(slug), title, summary, body)
	}
	return p, err
}

func (s *BlogService) SetPublished(ctx context.Context, id string, published bool) error {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return s.Posts.SetPublished(ctx, id, published, now())
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	return s.Posts.DeletePost(ctx, id)
}

func validatePostInput(title, summary, body string) (string, string, string, error) {
	title = strings.TrimSpace(title)
	summary = strings.TrimSpace(summary)
	body = strings.TrimSpace(body)

	fields := map[string]string{}
	if title == "" || len(title) > maxTitleLen {
		fields["title"] = "required, at most 200 characters"
	}
	if len(summary) > maxSummaryLen {
		fields["summary"] = "at most 500 characters"
	}
	if body == "" {
		fields["body"] = "required"
	}
	if Slugify(title) == "" {
		fields["title"] = "must contain letters or digits"
	}
	if len(fields) > 0 {
		return "", "", "", domain.NewValidationError(fields)
	}
	return title, summary, body, nil
}

// Slugify turns a post title into a URL path segment: lowercase ASCII
// letters and digits, runs of anything else collapsed to single dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func disambiguateSlug(slug string) string {
	return slug + "-" + uuid.NewString()[:8]
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
