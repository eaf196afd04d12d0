package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"softwareprosweb/internal/domain"
)

type blogPostResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body,omitempty"`
	AuthorName  string     `json:"author_name"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func blogPostListItem(p domain.BlogPost) blogPostResponse {
	return blogPostResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		AuthorName:  p.AuthorName,
		PublishedAt: p.PublishedAt,
	}
}

func (a *api) handleBlogList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	posts, err := a.blogSvc.ListPublished(r.Context(), limit, offset)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]blogPostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, blogPostListItem(p))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (a *api) handleBlogGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.blogSvc.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := blogPostListItem(p)
	resp.Body = p.Body
	WriteJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
