package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/projectshelf/internal/client/client"
	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/client/session"
	"github.com/dmitrijs2005/projectshelf/internal/common"
)

type userView struct {
	Name          string
	DisplayName   string
	Title         string
	Bio           string
	EmailVerified bool
	Completeness  int
}

type linkView struct {
	Platform string
	URL      string
}

type pageData struct {
	Title     string
	User      *userView
	Error     string
	Notice    string
	Email     string
	Username  string
	Platforms []string
	Links     []linkView
}

func newUserView(id *models.Identity) *userView {
	if id == nil {
		return nil
	}
	return &userView{
		Name:          id.Name(),
		DisplayName:   id.DisplayName,
		Title:         id.Title,
		Bio:           id.Bio,
		EmailVerified: id.EmailVerified,
		Completeness:  id.Completeness(),
	}
}

func (s *Server) page(r *http.Request, title string) pageData {
	q := r.URL.Query()
	return pageData{
		Title:  title,
		User:   newUserView(s.sessions.State().Identity),
		Error:  q.Get("error"),
		Notice: q.Get("notice"),
		Email:  q.Get("email"),
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.render(w, name, data); err != nil {
		s.logger.Error(r.Context(), "render failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func redirectWith(w http.ResponseWriter, r *http.Request, path string, params url.Values) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// signedIn sends visitors who already have a session to the dashboard.
func (s *Server) signedIn(w http.ResponseWriter, r *http.Request) bool {
	if s.sessions.State().SignedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return true
	}
	return false
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home", s.page(r, "Home"))
}

func (s *Server) Explore(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Explore")
	data.Platforms = common.SocialPlatforms
	s.render(w, r, "explore", data)
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if s.signedIn(w, r) {
		return
	}
	s.render(w, r, "login", s.page(r, "Sign in"))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/login", url.Values{"error": {"Invalid form data"}})
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		redirectWith(w, r, "/login", url.Values{"error": {"Email and password are required"}, "email": {email}})
		return
	}

	if err := s.sessions.Login(r.Context(), email, password); err != nil {
		redirectWith(w, r, "/login", url.Values{"error": {Message(err)}, "email": {email}})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	if s.signedIn(w, r) {
		return
	}
	data := s.page(r, "Sign up")
	data.Username = r.URL.Query().Get("username")
	s.render(w, r, "signup", data)
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/signup", url.Values{"error": {"Invalid form data"}})
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	back := url.Values{"email": {email}, "username": {username}}

	if email == "" || username == "" || password == "" {
		back.Set("error", "All fields are required")
		redirectWith(w, r, "/signup", back)
		return
	}

	if err := s.sessions.Signup(r.Context(), email, password, username); err != nil {
		back.Set("error", Message(err))
		redirectWith(w, r, "/signup", back)
		return
	}
	http.Redirect(w, r, "/onboarding", http.StatusFound)
}

func (s *Server) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "forgot", s.page(r, "Reset password"))
}

func (s *Server) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/forgot-password", url.Values{"error": {"Invalid form data"}})
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if err := s.sessions.RequestPasswordReset(r.Context(), email); err != nil {
		redirectWith(w, r, "/forgot-password", url.Values{"error": {Message(err)}, "email": {email}})
		return
	}
	redirectWith(w, r, "/login", url.Values{"notice": {ResetSentNotice}})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.State()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"loading":   st.Loading,
		"signed_in": st.SignedIn(),
		"gate":      s.gate.Status().String(),
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "logout incomplete", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard", s.page(r, "Dashboard"))
}

func (s *Server) Projects(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "projects", s.page(r, "Projects"))
}

func (s *Server) OnboardingPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Onboarding")
	id := s.sessions.State().Identity
	for _, p := range common.SocialPlatforms {
		link := linkView{Platform: p}
		if id != nil {
			link.URL = id.SocialLinks[p]
		}
		data.Links = append(data.Links, link)
	}
	s.render(w, r, "onboarding", data)
}

func (s *Server) Onboarding(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/onboarding", url.Values{"error": {"Invalid form data"}})
		return
	}

	patch := PatchFromForm(r.PostForm)
	if patch.IsEmpty() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	if err := s.sessions.UpdateProfile(r.Context(), patch); err != nil {
		redirectWith(w, r, "/onboarding", url.Values{"error": {Message(err)}})
		return
	}
	redirectWith(w, r, "/dashboard", url.Values{"notice": {"Profile saved"}})
}

// PatchFromForm builds a profile patch from submitted form fields. Fields
// absent from the form are left unchanged; social_<platform> fields are
// included even when empty so a cleared input removes the link.
func PatchFromForm(form url.Values) models.ProfilePatch {
	var p models.ProfilePatch
	field := func(name string) *string {
		if _, ok := form[name]; !ok {
			return nil
		}
		v := strings.TrimSpace(form.Get(name))
		return &v
	}
	p.DisplayName = field("display_name")
	p.Title = field("title")
	p.Bio = field("bio")

	for _, platform := range common.SocialPlatforms {
		if _, ok := form["social_"+platform]; !ok {
			continue
		}
		if p.SocialLinks == nil {
			p.SocialLinks = map[string]string{}
		}
		p.SocialLinks[platform] = strings.TrimSpace(form.Get("social_" + platform))
	}
	return p
}

// ResetSentNotice does not reveal whether the address has an account.
const ResetSentNotice = "If an account exists for that address, a reset link is on its way."

// Message turns a session error into text safe to show a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := UserMessage(err); ok {
		return msg
	}
	return "Something went wrong"
}

// UserMessage reports the user-facing text for err and whether err is a
// known kind.
func UserMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "The server is unavailable, try again later", true
	case errors.Is(err, client.ErrRateLimited):
		return "Too many attempts, try again later", true
	case errors.Is(err, session.ErrNotAuthenticated):
		return "Please sign in first", true
	case errors.Is(err, session.ErrStorage):
		return "Could not save your session locally", true
	case errors.Is(err, session.ErrAuthentication):
		return "Invalid email or password", true
	case errors.Is(err, session.ErrRegistration) && errors.Is(err, client.ErrAlreadyExists):
		return "That email or username is already taken", true
	case errors.Is(err, session.ErrRegistration):
		return "Could not create the account: " + detail(err, session.ErrRegistration), true
	case errors.Is(err, session.ErrDelivery):
		return "Could not send the reset message: " + detail(err, session.ErrDelivery), true
	case errors.Is(err, session.ErrValidation):
		return "Profile not saved: " + detail(err, session.ErrValidation), true
	default:
		return "", false
	}
}

// detail drops the error kind prefix from err's message.
func detail(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}
