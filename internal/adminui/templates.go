package adminui

import (
	"html/template"
	"net/http"
	"time"
)

var (
	loginT     = mustPage(loginPage)
	dashboardT = mustPage(dashboardPage)
	postsT     = mustPage(postsPage)
	postEditT  = mustPage(postEditPage)
	messagesT  = mustPage(messagesPage)
	errorT     = mustPage(errorPage)
)

func mustPage(page string) *template.Template {
	return template.Must(template.New("layout").Parse(adminLayout + page))
}

type viewData struct {
	Title string
	Error string
	User  string
}

type postRow struct {
	ID          string
	Slug        string
	Title       string
	Published   bool
	PublishedAt string
	UpdatedAt   string
}

type postsViewData struct {
	viewData
	Posts []postRow
}

type postFormData struct {
	viewData
	ID      string
	PTitle  string
	Summary string
	Body    string
	Slug    string
}

type messageRow struct {
	Name      string
	Email     string
	Company   string
	Message   string
	CreatedAt string
}

type messagesViewData struct {
	viewData
	Messages []messageRow
}

func render(w http.ResponseWriter, status int, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = t.ExecuteTemplate(w, "layout", data)
}

func renderError(w http.ResponseWriter, status int, title, msg string) {
	render(w, status, errorT, viewData{Title: title, Error: msg})
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

const adminLayout = `{{define "layout"}}<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>{{.Title}} | SoftwarePros Admin</title>
    <style>
      body{margin:0;font-family:system-ui,sans-serif;background:#f1f5f9;color:#0f172a}
      header{display:flex;justify-content:space-between;align-items:center;padding:14px 24px;background:#0f172a;color:#f8fafc}
      header a{color:#93c5fd;text-decoration:none;margin-right:14px;font-size:14px}
      header form{display:inline}
      main{max-width:960px;margin:24px auto;padding:0 16px}
      .card{background:white;border:1px solid #e2e8f0;border-radius:10px;padding:20px;margin-bottom:16px}
      table{width:100%;border-collapse:collapse;font-size:14px}
      th,td{text-align:left;padding:8px 10px;border-bottom:1px solid #e2e8f0;vertical-align:top}
      label{display:block;font-weight:600;font-size:13px;margin:12px 0 4px}
      input,textarea{width:100%;box-sizing:border-box;padding:8px 10px;border:1px solid #cbd5e1;border-radius:8px;font:inherit}
      textarea{min-height:220px}
      .btn{display:inline-block;padding:8px 14px;border-radius:8px;border:1px solid #2563eb;background:#2563eb;color:white;font-weight:600;font-size:14px;cursor:pointer;text-decoration:none}
      .btn.ghost{background:white;color:#2563eb}
      .btn.danger{background:#dc2626;border-color:#dc2626}
      .error{color:#b91c1c;font-weight:600;margin:10px 0}
      .muted{color:#64748b;font-size:13px}
    </style>
  </head>
  <body>
    <header>
      <div>
        <strong>SoftwarePros Admin</strong>
      </div>
      <nav>
        <a href="/admin/">Dashboard</a>
        <a href="/admin/posts">Posts</a>
        <a href="/admin/messages">Inbox</a>
        {{if .User}}<form method="post" action="/admin/logout"><button class="btn ghost" type="submit">Sign out</button></form>{{end}}
      </nav>
    </header>
    <main>
      {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
      {{template "content" .}}
    </main>
  </body>
</html>{{end}}`

const loginPage = `{{define "content"}}
<div class="card">
  <h1>Admin sign in</h1>
  <form method="post" action="/admin/login">
    <label for="email">Email</label>
    <input id="email" name="email" type="email" required />
    <label for="password">Password</label>
    <input id="password" name="password" type="password" required />
    <p><button class="btn" type="submit">Sign in</button></p>
  </form>
</div>
{{end}}`

const dashboardPage = `{{define "content"}}
<div class="card">
  <h1>Welcome, {{.User}}</h1>
  <p class="muted">Manage the public site from here.</p>
  <p>
    <a class="btn" href="/admin/posts">Blog posts</a>
    <a class="btn ghost" href="/admin/messages">Contact inbox</a>
  </p>
</div>
{{end}}`

const postsPage = `{{define "content"}}
<div class="card">
  <h1>Blog posts</h1>
  <p><a class="btn" href="/admin/posts/new">New post</a></p>
  <table>
    <tr><th>Title</th><th>Slug</th><th>Status</th><th>Updated</th><th></th></tr>
    {{range .Posts}}
    <tr>
      <td><a href="/admin/posts/{{.ID}}">{{.Title}}</a></td>
      <td class="muted">{{.Slug}}</td>
      <td>{{if .Published}}Published {{.PublishedAt}}{{else}}Draft{{end}}</td>
      <td class="muted">{{.UpdatedAt}}</td>
      <td>
        {{if .Published}}
        <form method="post" action="/admin/posts/{{.ID}}/unpublish"><button class="btn ghost" type="submit">Unpublish</button></form>
        {{else}}
        <form method="post" action="/admin/posts/{{.ID}}/publish"><button class="btn" type="submit">Publish</button></form>
        {{end}}
        <form method="post" action="/admin/posts/{{.ID}}/delete" onsubmit="return confirm('Delete this post?')"><button class="btn danger" type="submit">Delete</button></form>
      </td>
    </tr>
    {{else}}
    <tr><td colspan="5" class="muted">No posts yet.</td></tr>
    {{end}}
  </table>
</div>
{{end}}`

const postEditPage = `{{define "content"}}
<div class="card">
  <h1>{{if .ID}}Edit post{{else}}New post{{end}}</h1>
  {{if .Slug}}<p class="muted">Public URL: /blog/{{.Slug}}</p>{{end}}
  <form method="post" action="{{if .ID}}/admin/posts/{{.ID}}{{else}}/admin/posts{{end}}">
    <label for="title">Title</label>
    <input id="title" name="title" required maxlength="200" value="{{.PTitle}}" />
    <label for="summary">Summary</label>
    <input id="summary" name="summary" maxlength="500" value="{{.Summary}}" />
    <label for="body">Body</label>
    <textarea id="body" name="body" required>{{.Body}}</textarea>
    <p><button class="btn" type="submit">Save</button> <a class="btn ghost" href="/admin/posts">Back</a></p>
  </form>
</div>
{{end}}`

const messagesPage = `{{define "content"}}
<div class="card">
  <h1>Contact inbox</h1>
  <table>
    <tr><th>Received</th><th>From</th><th>Message</th></tr>
    {{range .Messages}}
    <tr>
      <td class="muted">{{.CreatedAt}}</td>
      <td>{{.Name}}<br /><a href="mailto:{{.Email}}">{{.Email}}</a>{{if .Company}}<br /><span class="muted">{{.Company}}</span>{{end}}</td>
      <td>{{.Message}}</td>
    </tr>
    {{else}}
    <tr><td colspan="3" class="muted">No messages.</td></tr>
    {{end}}
  </table>
</div>
{{end}}`

const errorPage = `{{define "content"}}
<div class="card">
  <h1>{{.Title}}</h1>
</div>
{{end}}`
