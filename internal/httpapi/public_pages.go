package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"softwareprosweb/internal/domain"
)

var (
	publicPageT = template.Must(template.New("public").Parse(publicLayout))
	blogIndexT  = template.Must(template.New("blog_index").Parse(blogIndexBody))
	blogPostT   = template.Must(template.New("blog_post").Parse(blogPostBody))
)

type publicPageData struct {
	Title string
	Body  template.HTML
}

func (a *api) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderPublicPage(w, http.StatusOK, "SoftwarePros", publicHomeBody)
}

func (a *api) handleServicesPage(w http.ResponseWriter, _ *http.Request) {
	renderPublicPage(w, http.StatusOK, "Services", publicServicesBody)
}

func (a *api) handleAboutPage(w http.ResponseWriter, _ *http.Request) {
	renderPublicPage(w, http.StatusOK, "About", publicAboutBody)
}

func (a *api) handleContactPage(w http.ResponseWriter, _ *http.Request) {
	renderPublicPage(w, http.StatusOK, "Contact", publicContactBody)
}

func (a *api) handleInvestorsPage(w http.ResponseWriter, _ *http.Request) {
	renderPublicPage(w, http.StatusOK, "Investor Relations", publicInvestorsBody)
}

func (a *api) handleMeetingPage(w http.ResponseWriter, _ *http.Request) {
	if a.meetingSvc == nil || !a.meetingSvc.Enabled() {
		renderPublicPage(w, http.StatusOK, "Meet With Us", publicMeetingDisabledBody)
		return
	}
	renderPublicPage(w, http.StatusOK, "Meet With Us", publicMeetingBody)
}

type blogIndexData struct {
	Posts []domain.BlogPost
}

func (a *api) handleBlogIndexPage(w http.ResponseWriter, r *http.Request) {
	if a.blogSvc == nil {
		renderPublicPage(w, http.StatusOK, "Blog", template.HTML(`<section class="card"><h1>Blog</h1><p class="lead">No posts yet.</p></section>`))
		return
	}

	posts, err := a.blogSvc.ListPublished(r.Context(), 0, 0)
	if err != nil {
		a.logger.Error("blog index", "error", err)
		renderPublicPage(w, http.StatusServiceUnavailable, "Blog", template.HTML(`<section class="card"><h1>Blog</h1><p class="lead">Temporarily unavailable.</p></section>`))
		return
	}

	renderPublicTemplate(w, http.StatusOK, "Blog", blogIndexT, blogIndexData{Posts: posts})
}

type blogPostData struct {
	Post       domain.BlogPost
	Published  string
	Paragraphs []string
}

func (a *api) handleBlogPostPage(w http.ResponseWriter, r *http.Request) {
	if a.blogSvc == nil {
		http.NotFound(w, r)
		return
	}

	p, err := a.blogSvc.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	published := ""
	if p.PublishedAt != nil {
		published = p.PublishedAt.Format("January 2, 2006")
	}
	renderPublicTemplate(w, http.StatusOK, p.Title, blogPostT, blogPostData{
		Post:       p,
		Published:  published,
		Paragraphs: splitParagraphs(p.Body),
	})
}

func renderPublicPage(w http.ResponseWriter, status int, title string, body template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = publicPageT.Execute(w, publicPageData{Title: title, Body: body})
}

func renderPublicTemplate(w http.ResponseWriter, status int, title string, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	renderPublicPage(w, status, title, template.HTML(buf.String()))
}

func splitParagraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

const publicLayout = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>{{.Title}} | SoftwarePros</title>
    <link rel="preconnect" href="https://fonts.googleapis.com" />
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin />
    <link href="https://fonts.googleapis.com/css2?family=Space+Grotesk:wght@500;700&family=Work+Sans:wght@400;500;600&display=swap" rel="stylesheet" />
    <style>
      :root{
        --bg:#f8fafc;
        --ink:#0f172a;
        --muted:#475569;
        --accent:#2563eb;
        --accent-2:#0ea5e9;
        --card:#ffffff;
        --line:rgba(15,23,42,0.12);
        --shadow:0 14px 32px rgba(15,23,42,0.08);
      }
      *{box-sizing:border-box}
      body{
        margin:0;
        font-family:"Work Sans","Helvetica Neue",Arial,sans-serif;
        color:var(--ink);
        background:var(--bg);
        min-height:100vh;
      }
      header{
        display:flex;
        align-items:center;
        justify-content:space-between;
        gap:16px;
        padding:24px clamp(20px,4vw,64px);
      }
      .logo{
        display:flex;
        align-items:center;
        gap:14px;
        font-family:"Space Grotesk","Work Sans",sans-serif;
        text-decoration:none;
        color:inherit;
      }
      .logo-mark{
        width:46px;
        height:46px;
        border-radius:14px;
        display:flex;
        align-items:center;
        justify-content:center;
        font-weight:700;
        letter-spacing:1px;
        color:white;
        background:linear-gradient(135deg,var(--accent),var(--accent-2));
      }
      .logo-title{font-weight:700;font-size:18px}
      .logo-sub{font-size:12px;color:var(--muted)}
      .nav{display:flex;gap:10px;flex-wrap:wrap}
      .nav a{
        text-decoration:none;
        font-weight:600;
        font-size:13px;
        padding:8px 14px;
        border-radius:999px;
        border:1px solid var(--line);
        background:var(--card);
        color:var(--ink);
      }
      .nav a.primary{background:var(--accent);border-color:var(--accent);color:white}
      main{max-width:1120px;margin:0 auto;padding:0 clamp(20px,4vw,64px) 80px}
      h1,h2{font-family:"Space Grotesk","Work Sans",sans-serif;margin:0 0 12px}
      .hero{display:grid;grid-template-columns:minmax(0,1.1fr) minmax(0,0.9fr);gap:32px;margin-top:24px}
      .badge{
        display:inline-flex;
        align-items:center;
        gap:8px;
        padding:6px 12px;
        border-radius:999px;
        border:1px solid rgba(37,99,235,0.25);
        background:rgba(37,99,235,0.08);
        color:var(--accent);
        font-size:12px;
        font-weight:600;
        letter-spacing:0.4px;
        text-transform:uppercase;
      }
      .lead{color:var(--muted);line-height:1.6;margin:0 0 16px}
      .cta{display:flex;flex-wrap:wrap;gap:12px;margin-top:20px}
      .button{
        display:inline-flex;
        align-items:center;
        justify-content:center;
        padding:12px 18px;
        border-radius:12px;
        border:1px solid var(--accent);
        background:var(--accent);
        color:white;
        text-decoration:none;
        font-weight:600;
        cursor:pointer;
        font-size:15px;
      }
      .button.ghost{background:var(--card);color:var(--accent)}
      .card{
        background:var(--card);
        border:1px solid var(--line);
        border-radius:18px;
        padding:24px;
        box-shadow:var(--shadow);
        margin-top:24px;
      }
      .grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));gap:16px;margin-top:24px}
      label{display:block;font-weight:600;font-size:13px;margin:14px 0 6px}
      input,textarea{
        width:100%;
        padding:11px 14px;
        border:1px solid var(--line);
        border-radius:12px;
        font:inherit;
        background:var(--bg);
      }
      textarea{min-height:140px;resize:vertical}
      .form-note{margin-top:14px;font-size:13px;color:var(--muted)}
      .form-note.error{color:#b91c1c}
      .form-note.ok{color:#15803d}
      .post-meta{font-size:13px;color:var(--muted);margin-bottom:16px}
      article p{line-height:1.7}
      footer{
        margin-top:36px;
        padding-top:18px;
        border-top:1px solid var(--line);
        color:var(--muted);
        font-size:13px;
        display:flex;
        flex-wrap:wrap;
        gap:12px;
        align-items:center;
        justify-content:space-between;
      }
      @media (max-width:900px){
        .hero{grid-template-columns:1fr}
        header{flex-direction:column;align-items:flex-start}
      }
    </style>
  </head>
  <body>
    <header>
      <a class="logo" href="/">
        <span class="logo-mark">SP</span>
        <span>
          <div class="logo-title">SoftwarePros</div>
          <div class="logo-sub">Software consulting and delivery</div>
        </span>
      </a>
      <nav class="nav">
        <a href="/services">Services</a>
        <a href="/blog">Blog</a>
        <a href="/about">About</a>
        <a href="/investors">Investors</a>
        <a class="primary" href="/contact">Contact</a>
      </nav>
    </header>
    <main>
      {{.Body}}
      <footer>
        <div>SoftwarePros LLC. Custom software, delivered.</div>
        <div>
          <a href="/meeting">Meet with us</a>
        </div>
      </footer>
    </main>
  </body>
</html>`

var publicHomeBody = template.HTML(`
<section class="hero">
  <div>
    <span class="badge">Consulting &amp; Delivery</span>
    <h1>Ship the software your business actually needs.</h1>
    <p class="lead">SoftwarePros is a senior-only consultancy. We design, build, and operate backend systems, cloud platforms, and the tooling around them, then hand you a team that can run it.</p>
    <div class="cta">
      <a class="button" href="/contact">Start a project</a>
      <a class="button ghost" href="/services">What we do</a>
    </div>
  </div>
  <div class="card">
    <h2>Recent focus areas</h2>
    <div class="grid">
      <div>
        <h2>Platform engineering</h2>
        <p class="lead">Kubernetes, CI/CD, and the paved road your product teams build on.</p>
      </div>
      <div>
        <h2>Backend systems</h2>
        <p class="lead">APIs, data pipelines, and services built for the load you expect next year.</p>
      </div>
      <div>
        <h2>Legacy modernization</h2>
        <p class="lead">Incremental migrations that keep the lights on while the rewrite lands.</p>
      </div>
    </div>
  </div>
</section>
`)

var publicServicesBody = template.HTML(`
<section class="card">
  <span class="badge">Services</span>
  <h1>What we do</h1>
  <p class="lead">Fixed-scope engagements or embedded teams, always with a named tech lead and a written delivery plan.</p>
  <div class="grid">
    <div class="card">
      <h2>Product engineering</h2>
      <p class="lead">Full-stack delivery from prototype to production, including design reviews and on-call handover.</p>
    </div>
    <div class="card">
      <h2>Cloud &amp; infrastructure</h2>
      <p class="lead">Cloud migrations, infrastructure as code, cost reviews, and incident response retainers.</p>
    </div>
    <div class="card">
      <h2>Team augmentation</h2>
      <p class="lead">Senior engineers embedded with your team, with knowledge transfer as an explicit deliverable.</p>
    </div>
    <div class="card">
      <h2>Architecture reviews</h2>
      <p class="lead">A two-week assessment of your systems with a prioritized, costed remediation plan.</p>
    </div>
  </div>
</section>
`)

var publicAboutBody = template.HTML(`
<section class="card">
  <span class="badge">About</span>
  <h1>A small firm, on purpose</h1>
  <p class="lead">SoftwarePros was founded by engineers who kept seeing the same failure mode: big consultancies shipping big teams and thin results. We stay small, staff only senior people, and put our names on what we deliver.</p>
  <p class="lead">Every engagement has a written scope, a named lead, and a definition of done that includes documentation and handover. If we would not run it ourselves, we do not ship it.</p>
</section>
`)

var publicContactBody = template.HTML(`
<section class="card">
  <span class="badge">Contact</span>
  <h1>Tell us about your project</h1>
  <p class="lead">We reply within one business day. The form below goes straight to the engineering leads, not a sales queue.</p>
  <form id="contact-form">
    <label for="name">Name</label>
    <input id="name" name="name" required maxlength="200" />
    <label for="email">Email</label>
    <input id="email" name="email" type="email" required maxlength="254" />
    <label for="company">Company (optional)</label>
    <input id="company" name="company" maxlength="200" />
    <label for="message">What do you need?</label>
    <textarea id="message" name="message" required maxlength="4000"></textarea>
    <div class="cta"><button class="button" type="submit">Send message</button></div>
    <div id="contact-note" class="form-note"></div>
  </form>
  <script>
    document.getElementById("contact-form").addEventListener("submit", async (e) => {
      e.preventDefault();
      const note = document.getElementById("contact-note");
      note.className = "form-note";
      note.textContent = "Sending...";
      const body = {
        name: document.getElementById("name").value,
        email: document.getElementById("email").value,
        company: document.getElementById("company").value,
        message: document.getElementById("message").value,
      };
      try {
        const res = await fetch("/v1/contact", {
          method: "POST",
          headers: {"Content-Type": "application/json"},
          body: JSON.stringify(body),
        });
        if (res.status === 429) {
          const data = await res.json();
          const mins = Math.ceil((data.error.retry_after_ms || 0) / 60000);
          note.className = "form-note error";
          note.textContent = "Too many messages. Please try again in about " + mins + " minute(s).";
          return;
        }
        if (!res.ok) {
          note.className = "form-note error";
          note.textContent = "Please check the form and try again.";
          return;
        }
        note.className = "form-note ok";
        note.textContent = "Thanks! We'll be in touch shortly.";
        e.target.reset();
      } catch (err) {
        note.className = "form-note error";
        note.textContent = "Network error. Please try again.";
      }
    });
  </script>
</section>
`)

var publicInvestorsBody = template.HTML(`
<section class="card">
  <span class="badge">Investor Relations</span>
  <h1>Company metrics</h1>
  <p class="lead">Quarterly figures for revenue, headcount, and active projects. Data is loaded live from the metrics API.</p>
  <div id="metrics"></div>
  <script>
    fetch("/v1/investors/metrics")
      .then((res) => res.json())
      .then((data) => {
        const root = document.getElementById("metrics");
        for (const series of data.series || []) {
          const card = document.createElement("div");
          card.className = "card";
          const h = document.createElement("h2");
          h.textContent = series.name.replace(/_/g, " ");
          card.appendChild(h);
          const table = document.createElement("table");
          for (const p of series.points) {
            const row = table.insertRow();
            row.insertCell().textContent = p.quarter;
            row.insertCell().textContent = p.value.toLocaleString();
          }
          card.appendChild(table);
          root.appendChild(card);
        }
      })
      .catch(() => {
        document.getElementById("metrics").textContent = "Metrics are temporarily unavailable.";
      });
  </script>
</section>
`)

var publicMeetingBody = template.HTML(`
<section class="card">
  <span class="badge">Meet With Us</span>
  <h1>Join a video meeting</h1>
  <p class="lead">Enter the room name from your invitation. No account needed.</p>
  <form id="meeting-form">
    <label for="room">Room</label>
    <input id="room" name="room" required pattern="[a-z0-9-]{3,64}" />
    <label for="display_name">Your name</label>
    <input id="display_name" name="display_name" maxlength="100" />
    <div class="cta"><button class="button" type="submit">Join</button></div>
    <div id="meeting-note" class="form-note"></div>
  </form>
  <script>
    document.getElementById("meeting-form").addEventListener("submit", async (e) => {
      e.preventDefault();
      const note = document.getElementById("meeting-note");
      note.className = "form-note";
      note.textContent = "Requesting access...";
      try {
        const res = await fetch("/v1/meetings/join", {
          method: "POST",
          headers: {"Content-Type": "application/json"},
          body: JSON.stringify({
            room: document.getElementById("room").value,
            display_name: document.getElementById("display_name").value,
          }),
        });
        if (!res.ok) {
          note.className = "form-note error";
          note.textContent = "Could not join that room. Check the room name.";
          return;
        }
        const join = await res.json();
        note.className = "form-note ok";
        note.textContent = "Joining room " + join.room + "...";
        window.dispatchEvent(new CustomEvent("meeting:join", { detail: join }));
      } catch (err) {
        note.className = "form-note error";
        note.textContent = "Network error. Please try again.";
      }
    });
  </script>
</section>
`)

var publicMeetingDisabledBody = template.HTML(`
<section class="card">
  <span class="badge">Meet With Us</span>
  <h1>Video meetings</h1>
  <p class="lead">Video meetings are not available right now. Use the <a href="/contact">contact form</a> and we will send you an invitation.</p>
</section>
`)

const blogIndexBody = `
<section class="card">
  <span class="badge">Blog</span>
  <h1>Engineering notes</h1>
  <p class="lead">Writing from the SoftwarePros team on systems, delivery, and the trade we practice.</p>
</section>
{{range .Posts}}
<section class="card">
  <h2><a href="/blog/{{.Slug}}">{{.Title}}</a></h2>
  <div class="post-meta">{{.AuthorName}}{{if .PublishedAt}} &middot; {{.PublishedAt.Format "January 2, 2006"}}{{end}}</div>
  {{if .Summary}}<p class="lead">{{.Summary}}</p>{{end}}
</section>
{{else}}
<section class="card"><p class="lead">No posts yet. Check back soon.</p></section>
{{end}}
`

const blogPostBody = `
<article class="card">
  <h1>{{.Post.Title}}</h1>
  <div class="post-meta">{{.Post.AuthorName}}{{if .Published}} &middot; {{.Published}}{{end}}</div>
  {{range .Paragraphs}}<p>{{.}}</p>{{end}}
</article>
<p><a href="/blog">&larr; All posts</a></p>
`
