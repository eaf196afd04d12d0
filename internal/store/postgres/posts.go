package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"softwareprosweb/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsStore struct {
	pool *pgxpool.Pool
}

func NewPostsStore(pool *pgxpool.Pool) *PostsStore {
	return &PostsStore{pool: pool}
}

const postColumns = `
	p.id, p.slug, p.title, p.summary, p.body, p.author_id, u.name,
	p.published, p.published_at, p.created_at, p.updated_at`

func (s *PostsStore) CreatePost(ctx context.Context, slug, title, summary, body, authorID string) (domain.BlogPost, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO blog_posts (slug, title, summary, body, author_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM inserted p
		JOIN users u ON u.id = p.author_id
	`

	p, err := scanPost(s.pool.QueryRow(ctx, q, slug, title, summary, body, authorID))
	if err != nil {
		return domain.BlogPost{}, mapPostWriteError(err)
	}
	return p, nil
}

func (s *PostsStore) UpdatePost(ctx context.Context, id, slug, title, summary, body string) (domain.BlogPost, error) {
	const q = `
		WITH updated AS (
			UPDATE blog_posts
			SET slug = $2, title = $3, summary = $4, body = $5, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM updated p
		JOIN users u ON u.id = p.author_id
	`

	p, err := scanPost(s.pool.QueryRow(ctx, q, id, slug, title, summary, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlogPost{}, domain.ErrNotFound
		}
		return domain.BlogPost{}, mapPostWriteError(err)
	}
	return p, nil
}

func (s *PostsStore) SetPublished(ctx context.Context, id string, published bool, when time.Time) error {
	const q = `
		UPDATE blog_posts
		SET published = $2,
		    published_at = CASE WHEN $2 THEN COALESCE(published_at, $3) ELSE NULL END,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, q, id, published, when)
	if err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostsStore) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostsStore) GetPostByID(ctx context.Context, id string) (domain.BlogPost, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	p, err := scanPost(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlogPost{}, domain.ErrNotFound
		}
		return domain.BlogPost{}, fmt.Errorf("get post by id: %w", err)
	}
	return p, nil
}

// GetPublishedBySlug only returns published posts; drafts are invisible
// on the public site even with a guessed slug.
func (s *PostsStore) GetPublishedBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.published
	`

	p, err := scanPost(s.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlogPost{}, domain.ErrNotFound
		}
		return domain.BlogPost{}, fmt.Errorf("get post by slug: %w", err)
	}
	return p, nil
}

func (s *PostsStore) ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]domain.BlogPost, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE (NOT $1::boolean) OR p.published
		ORDER BY COALESCE(p.published_at, p.created_at) DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, q, publishedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (domain.BlogPost, error) {
	var (
		p           domain.BlogPost
		idUUID      pgtype.UUID
		authorUUID  pgtype.UUID
		publishedTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&p.Slug,
		&p.Title,
		&p.Summary,
		&p.Body,
		&authorUUID,
		&p.AuthorName,
		&p.Published,
		&publishedTS,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.BlogPost{}, err
	}

	p.ID = uuidOrEmpty(idUUID)
	p.AuthorID = uuidOrEmpty(authorUUID)
	p.PublishedAt = timestamptzPtr(publishedTS)
	return p, nil
}

func mapPostWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "blog_posts_slug_uq" {
		return domain.ErrSlugTaken
	}
	return fmt.Errorf("write post: %w", err)
}
