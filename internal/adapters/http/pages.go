package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/sport"
	"coachhub/internal/domain/user"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts md to HTML, falling back to escaped text.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// registerPageRoutes maps the server-rendered pages.
func registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleHomePage)
	mux.HandleFunc("GET /coaches/{id}", handleCoachPage)
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLoginForm)
	mux.HandleFunc("GET /signup", handleSignUpPage)
	mux.HandleFunc("POST /signup", handleSignUpForm)
	mux.HandleFunc("GET /verify", handleVerifyPage)
	mux.HandleFunc("POST /logout", handleLogoutForm)
	mux.Handle("GET /dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboardPage)))
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentRole":    func() string { return sess.Role },
		"currentEmail":   func() string { return sess.Email },
		"isLoggedIn":     func() bool { return sess.UserID != "" },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": renderMarkdown,
		"money": func(cents int) string {
			return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
		},
		"stars": func(avg float64) string { return fmt.Sprintf("%.1f", avg) },
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write_page_failed", "template", templateName, "error", err)
	}
}

// pageError renders the error page for err with the status writeError would pick.
func pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		slog.Error("internal_error", "error", err.Error())
		msg = "Something went wrong."
	case http.StatusNotFound:
		msg = "Page not found."
	case http.StatusServiceUnavailable:
		msg = "Service temporarily unavailable."
	}
	renderTemplate(w, r, status, "error.html", map[string]any{"Status": status, "Message": msg})
}

type homePage struct {
	Query   projections.SearchCoachesQuery
	Result  projections.SearchCoachesResult
	Sports  []sport.Sport
	Cities  []city.City
	SortOpt []string
}

// handleHomePage lists published coaches with the search form.
func handleHomePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := searchQueryFrom(r)
	res, err := projections.QuerySearchCoaches(ctx, query, stores.Coaches)
	if err != nil {
		pageError(w, r, err)
		return
	}
	sports, err := stores.Sports.List(ctx)
	if err != nil {
		pageError(w, r, err)
		return
	}
	cities, err := stores.Cities.List(ctx)
	if err != nil {
		pageError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "home.html", homePage{
		Query:   query,
		Result:  res,
		Sports:  sports,
		Cities:  cities,
		SortOpt: projections.SortOptions,
	})
}

// handleCoachPage shows a coach's public profile.
func handleCoachPage(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetCoachProfile(r.Context(), r.PathValue("id"), viewerFrom(r), coachProfileDeps())
	if err != nil {
		pageError(w, r, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "coach.html", view)
}

type authForm struct {
	Email    string
	FullName string
	Role     string
	Error    string
	Notice   string
}

func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "login.html", authForm{})
}

// handleLoginForm signs in from the form and redirects to the dashboard.
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pageError(w, r, errBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	if _, err := signIn(w, r, email, r.PostForm.Get("password")); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
			pageError(w, r, err)
			return
		}
		renderTemplate(w, r, status, "login.html", authForm{Email: email, Error: err.Error()})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "signup.html", authForm{Role: user.RoleStudent})
}

// handleSignUpForm registers from the form. Accounts that need email
// confirmation see a notice; the rest go to the login page.
func handleSignUpForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pageError(w, r, errBadRequest)
		return
	}
	form := authForm{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		FullName: strings.TrimSpace(r.PostForm.Get("full_name")),
		Role:     r.PostForm.Get("role"),
	}
	res, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		Email:     form.Email,
		Password:  r.PostForm.Get("password"),
		FullName:  form.FullName,
		Role:      form.Role,
		IP:        remoteIP(r),
		UserAgent: r.UserAgent(),
	}, signUpDeps())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
			pageError(w, r, err)
			return
		}
		form.Error = err.Error()
		renderTemplate(w, r, status, "signup.html", form)
		return
	}
	if res.VerificationRequired {
		renderTemplate(w, r, http.StatusCreated, "login.html", authForm{
			Email:  form.Email,
			Notice: "Check your inbox for a confirmation link before signing in.",
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleVerifyPage confirms the address in ?token= and reports the outcome.
func handleVerifyPage(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteVerifyEmail(r.Context(), r.URL.Query().Get("token"), verifyDeps())
	data := map[string]any{"Verified": err == nil}
	status := http.StatusOK
	switch {
	case err == nil:
	case statusFor(err) < http.StatusInternalServerError:
		status = statusFor(err)
		data["Error"] = err.Error()
	default:
		pageError(w, r, err)
		return
	}
	renderTemplate(w, r, status, "verify.html", data)
}

func handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	signOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDashboardPage shows the signed-in user's bookings.
func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	data := map[string]any{"Role": sess.Role}
	if sess.Role == user.RoleCoach {
		d, err := projections.QueryGetCoachDashboard(r.Context(), sess.UserID, dashboardDeps())
		if err != nil {
			pageError(w, r, err)
			return
		}
		data["Coach"] = d
	} else {
		d, err := projections.QueryGetStudentDashboard(r.Context(), sess.UserID, dashboardDeps())
		if err != nil {
			pageError(w, r, err)
			return
		}
		data["Student"] = d
	}
	renderTemplate(w, r, http.StatusOK, "dashboard.html", data)
}
