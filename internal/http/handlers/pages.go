package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dcatracker/internal/domain"
	"dcatracker/internal/i18n"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var layout = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}
</main>
{{if .Email}}<footer><p>{{.SignedInAs}}</p><form method="post" action="/auth/logout"><button type="submit">{{.Logout}}</button></form></footer>{{end}}
</body>
</html>
`))

type pageData struct {
	Lang       string
	Title      string
	Body       template.HTML
	Email      string
	SignedInAs string
	Logout     string
}

// page renders a markdown body inside the site layout. Only static and
// catalog text goes through markdown; user data is escaped by the template.
func (a *App) page(w http.ResponseWriter, r *http.Request, status int, title, body string) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		a.fail(w, r, fmt.Errorf("render page: %w", err))
		return
	}
	locale := localeOf(r)
	data := pageData{Lang: locale, Title: title, Body: template.HTML(buf.String())}
	if who, ok := a.currentIdentity(r); ok {
		data.Email = who.Email
		data.SignedInAs = i18n.T(locale, i18n.SignedInAs, who.Email)
		data.Logout = i18n.T(locale, i18n.Logout)
	}
	var out bytes.Buffer
	if err := layout.Execute(&out, data); err != nil {
		a.fail(w, r, fmt.Errorf("render layout: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = out.WriteTo(w)
}

// LoginPage offers the provider sign-in link.
func (a *App) LoginPage(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	provider := cases.Title(language.Und).String(a.OAuthProvider)
	title := i18n.T(locale, i18n.LoginTitle)
	body := fmt.Sprintf("# %s\n\n%s\n\n[%s](/auth/login)\n",
		title, i18n.T(locale, i18n.LoginIntro), i18n.T(locale, i18n.LoginAction, provider))
	a.page(w, r, http.StatusOK, title, body)
}

func (a *App) AuthErrorPage(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	title := i18n.T(locale, i18n.AuthErrorTitle)
	body := fmt.Sprintf("# %s\n\n%s\n\n[%s](/login)\n",
		title, i18n.T(locale, i18n.AuthErrorBody), i18n.T(locale, i18n.AuthErrorRetry))
	a.page(w, r, http.StatusOK, title, body)
}

// Dashboard is the signed-in landing page linking to each coin.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	title := i18n.T(locale, i18n.DashboardTitle)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", title, i18n.T(locale, i18n.DashboardIntro))
	for _, c := range domain.Coins {
		info := c.Info()
		fmt.Fprintf(&sb, "- [%s %s (%s)](/crypto/%s)\n", info.Icon, info.Name, info.Symbol, c)
	}
	a.page(w, r, http.StatusOK, title, sb.String())
}

// CoinPage is the per-coin detail shell. Unknown coins go back to the
// dashboard.
func (a *App) CoinPage(w http.ResponseWriter, r *http.Request) {
	coin, err := domain.ParseCoin(chi.URLParam(r, "coin"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	locale := localeOf(r)
	info := coin.Info()
	title := i18n.T(locale, i18n.CoinDetailTitle, info.Name)
	body := fmt.Sprintf("# %s %s\n\n%s\n\n[%s](/)\n",
		info.Icon, title, i18n.T(locale, i18n.CoinDetailIntro, info.Name, info.Symbol), i18n.T(locale, i18n.BackToDashboard))
	a.page(w, r, http.StatusOK, title, body)
}
