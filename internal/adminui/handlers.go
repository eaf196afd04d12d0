package adminui

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"softwareprosweb/internal/auth"
	"softwareprosweb/internal/domain"
)

func (a *app) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)
	render(w, http.StatusOK, dashboardT, viewData{Title: "Admin", User: u.Name})
}

func (a *app) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	if u, ok := a.currentUser(r); ok && u.Role == domain.UserRoleAdmin {
		http.Redirect(w, r, "/admin/", http.StatusFound)
		return
	}
	render(w, http.StatusOK, loginT, viewData{Title: "Admin Login"})
}

func (a *app) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, loginT, viewData{Title: "Admin Login", Error: "Invalid form"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.Form.Get("email")))
	password := r.Form.Get("password")
	if email == "" || password == "" {
		render(w, http.StatusBadRequest, loginT, viewData{Title: "Admin Login", Error: "Email and password are required"})
		return
	}

	if a.loginLimiter != nil {
		ip := clientIP(r)
		if !a.loginLimiter.Allow("ip:"+ip) || !a.loginLimiter.Allow("email:"+email) {
			render(w, http.StatusTooManyRequests, loginT, viewData{Title: "Admin Login", Error: "Too many attempts, try again later"})
			return
		}
	}

	u, token, err := a.authSvc.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			render(w, http.StatusServiceUnavailable, loginT, viewData{Title: "Admin Login", Error: "Service temporarily unavailable"})
			return
		}
		render(w, http.StatusUnauthorized, loginT, viewData{Title: "Admin Login", Error: "Invalid credentials"})
		return
	}
	if u.Role != domain.UserRoleAdmin {
		render(w, http.StatusForbidden, loginT, viewData{Title: "Admin Login", Error: "Not allowed"})
		return
	}

	auth.SetSessionCookie(w, token, a.sessionTTL, a.cookieSecure)
	http.Redirect(w, r, "/admin/", http.StatusFound)
}

func (a *app) handleLogoutPost(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, a.cookieSecure)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

func (a *app) handlePostsList(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)

	posts, err := a.blogSvc.ListAll(r.Context(), 100, 0)
	if err != nil {
		renderError(w, http.StatusInternalServerError, "Error", "Failed to load posts")
		return
	}

	rows := make([]postRow, 0, len(posts))
	for _, p := range posts {
		row := postRow{
			ID:        p.ID,
			Slug:      p.Slug,
			Title:     p.Title,
			Published: p.Published,
			UpdatedAt: fmtTime(p.UpdatedAt),
		}
		if p.PublishedAt != nil {
			row.PublishedAt = fmtTime(*p.PublishedAt)
		}
		rows = append(rows, row)
	}
	render(w, http.StatusOK, postsT, postsViewData{viewData: viewData{Title: "Posts", User: u.Name}, Posts: rows})
}

func (a *app) handlePostNewGet(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)
	render(w, http.StatusOK, postEditT, postFormData{viewData: viewData{Title: "New Post", User: u.Name}})
}

func (a *app) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)

	if err := r.ParseForm(); err != nil {
		renderError(w, http.StatusBadRequest, "Error", "Invalid form")
		return
	}
	title := r.Form.Get("title")
	summary := r.Form.Get("summary")
	body := r.Form.Get("body")

	_, err := a.blogSvc.Create(r.Context(), u.ID, title, summary, body)
	if err != nil {
		render(w, http.StatusBadRequest, postEditT, postFormData{
			viewData: viewData{Title: "New Post", User: u.Name, Error: "Could not save: " + err.Error()},
			PTitle:   title, Summary: summary, Body: body,
		})
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusFound)
}

func (a *app) handlePostEditGet(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)

	p, err := a.blogSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		renderError(w, http.StatusNotFound, "Not Found", "No such post")
		return
	}
	render(w, http.StatusOK, postEditT, postFormData{
		viewData: viewData{Title: "Edit Post", User: u.Name},
		ID:       p.ID, PTitle: p.Title, Summary: p.Summary, Body: p.Body, Slug: p.Slug,
	})
}

func (a *app) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		renderError(w, http.StatusBadRequest, "Error", "Invalid form")
		return
	}
	title := r.Form.Get("title")
	summary := r.Form.Get("summary")
	body := r.Form.Get("body")

	_, err := a.blogSvc.Update(r.Context(), id, title, summary, body)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			renderError(w, http.StatusNotFound, "Not Found", "No such post")
			return
		}
		render(w, http.StatusBadRequest, postEditT, postFormData{
			viewData: viewData{Title: "Edit Post", User: u.Name, Error: "Could not save: " + err.Error()},
			ID:       id, PTitle: title, Summary: summary, Body: body,
		})
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusFound)
}

func (a *app) handlePostPublish(w http.ResponseWriter, r *http.Request) {
	a.setPublished(w, r, true)
}

func (a *app) handlePostUnpublish(w http.ResponseWriter, r *http.Request) {
	a.setPublished(w, r, false)
}

func (a *app) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	if err := a.blogSvc.SetPublished(r.Context(), r.PathValue("id"), published); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			renderError(w, http.StatusNotFound, "Not Found", "No such post")
			return
		}
		renderError(w, http.StatusInternalServerError, "Error", "Failed to update post")
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusFound)
}

func (a *app) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.blogSvc.Delete(r.Context(), r.PathValue("id")); err != nil && !errors.Is(err, domain.ErrNotFound) {
		renderError(w, http.StatusInternalServerError, "Error", "Failed to delete post")
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusFound)
}

func (a *app) handleMessagesList(w http.ResponseWriter, r *http.Request) {
	u, _ := a.currentUser(r)

	msgs, err := a.contactSvc.ListMessages(r.Context(), 100, 0)
	if err != nil {
		renderError(w, http.StatusInternalServerError, "Error", "Failed to load messages")
		return
	}

	rows := make([]messageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageRow{
			Name:      m.Name,
			Email:     m.Email,
			Company:   m.Company,
			Message:   m.Message,
			CreatedAt: fmtTime(m.CreatedAt),
		})
	}
	render(w, http.StatusOK, messagesT, messagesViewData{viewData: viewData{Title: "Inbox", User: u.Name}, Messages: rows})
}

// minimal duplicate of httpapi's client IP logic to avoid an import cycle.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
