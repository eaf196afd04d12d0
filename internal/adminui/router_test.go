package adminui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/service"
)

type memUsersStore struct {
	users map[string]domain.UserWithPassword // by email
}

func (s *memUsersStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u.User, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *memUsersStore) GetUserByEmail(_ context.Context, email string) (domain.UserWithPassword, error) {
	u, ok := s.users[email]
	if !ok {
		return domain.UserWithPassword{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *memUsersStore) SetLastLogin(context.Context, string, time.Time) error { return nil }

type memPostsStore struct {
	posts  map[string]domain.BlogPost
	nextID int
}

func (s *memPostsStore) CreatePost(_ context.Context, slug, title, summary, body, authorID string) (domain.BlogPost, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			return domain.BlogPost{}, domain.ErrSlugTaken
		}
	}
	if s.posts == nil {
		s.posts = map[string]domain.BlogPost{}
	}
	s.nextID++
	p := domain.BlogPost{
		ID: "p" + string(rune('0'+s.nextID)), Slug: slug, Title: title,
		Summary: summary, Body: body, AuthorID: authorID, UpdatedAt: time.Now(),
	}
	s.posts[p.ID] = p
	return p, nil
}

func (s *memPostsStore) UpdatePost(_ context.Context, id, slug, title, summary, body string) (domain.BlogPost, error) {
	p, ok := s.posts[id]
	if !ok {
		return domain.BlogPost{}, domain.ErrNotFound
	}
	p.Slug, p.Title, p.Summary, p.Body = slug, title, summary, body
	s.posts[id] = p
	return p, nil
}

func (s *memPostsStore) SetPublished(_ context.Context, id string, published bool, when time.Time) error {
	p, ok := s.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Published = published
	if published {
		p.PublishedAt = &when
	}
	s.posts[id] = p
	return nil
}

func (s *memPostsStore) DeletePost(_ context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memPostsStore) GetPostByID(_ context.Context, id string) (domain.BlogPost, error) {
	p, ok := s.posts[id]
	if !ok {
		return domain.BlogPost{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *memPostsStore) GetPublishedBySlug(_ context.Context, slug string) (domain.BlogPost, error) {
	for _, p := range s.posts {
		if p.Slug == slug && p.Published {
			return p, nil
		}
	}
	return domain.BlogPost{}, domain.ErrNotFound
}

func (s *memPostsStore) ListPosts(_ context.Context, publishedOnly bool, limit, offset int) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	for _, p := range s.posts {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

const adminPassword = "a long admin password"

func newTestApp(t *testing.T) (http.Handler, *memPostsStore) {
	t.Helper()

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &memUsersStore{users: map[string]domain.UserWithPassword{
		"admin@example.com": {
			User: domain.User{
				ID: "admin-1", Email: "admin@example.com", Name: "Admin",
				Role: domain.UserRoleAdmin, Status: domain.UserStatusActive,
			},
			PasswordHash: hash,
		},
		"member@example.com": {
			User: domain.User{
				ID: "member-1", Email: "member@example.com", Name: "Member",
				Role: domain.UserRoleMember, Status: domain.UserStatusActive,
			},
			PasswordHash: hash,
		},
	}}

	posts := &memPostsStore{}
	h := New(Opts{
		Auth: &service.AuthService{
			Users:  users,
			Tokens: auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef")),
		},
		Blog: &service.BlogService{Posts: posts},
	})
	return h, posts
}

func loginForm(t *testing.T, h http.Handler, email string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"email": {email}, "password": {adminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func adminCookie(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := loginForm(t, h, "admin@example.com")
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie after admin login")
	return nil
}

func TestAdminLoginRedirects(t *testing.T) {
	h, _ := newTestApp(t)

	rr := loginForm(t, h, "admin@example.com")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/" {
		t.Fatalf("status = %d, location %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestAdminLoginRejectsMemberRole(t *testing.T) {
	h, _ := newTestApp(t)

	rr := loginForm(t, h, "member@example.com")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-admin account", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			t.Fatalf("non-admin login must not set a session cookie")
		}
	}
}

func TestAdminPagesRedirectWhenSignedOut(t *testing.T) {
	h, _ := newTestApp(t)

	for _, path := range []string{"/admin/", "/admin/posts", "/admin/posts/new"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
			t.Fatalf("%s: status = %d, location %q", path, rr.Code, rr.Header().Get("Location"))
		}
	}
}

func TestAdminPostLifecycle(t *testing.T) {
	h, store := newTestApp(t)
	c := adminCookie(t, h)

	do := func(method, path string, form url.Values) *httptest.ResponseRecorder {
		var req *http.Request
		if form != nil {
			req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/admin/posts", url.Values{
		"title":   {"Launching Our Practice"},
		"summary": {"Who we are."},
		"body":    {"We build software."},
	})
	if rr.Code != http.StatusFound {
		t.Fatalf("create: status = %d, body %s", rr.Code, rr.Body.String())
	}
	if len(store.posts) != 1 {
		t.Fatalf("post not stored")
	}

	var id string
	for pid, p := range store.posts {
		id = pid
		if p.Slug != "launching-our-practice" {
			t.Fatalf("slug = %q", p.Slug)
		}
		if p.AuthorID != "admin-1" {
			t.Fatalf("author = %q", p.AuthorID)
		}
	}

	if rr := do(http.MethodPost, "/admin/posts/"+id+"/publish", nil); rr.Code != http.StatusFound {
		t.Fatalf("publish: status = %d", rr.Code)
	}
	if !store.posts[id].Published {
		t.Fatalf("post not published")
	}

	rr = do(http.MethodGet, "/admin/posts", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Launching Our Practice") {
		t.Fatalf("posts list missing post: status %d", rr.Code)
	}

	if rr := do(http.MethodPost, "/admin/posts/"+id+"/delete", nil); rr.Code != http.StatusFound {
		t.Fatalf("delete: status = %d", rr.Code)
	}
	if len(store.posts) != 0 {
		t.Fatalf("post not deleted")
	}
}
