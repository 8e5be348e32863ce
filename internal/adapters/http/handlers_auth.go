package web

import (
	"net/http"
	"time"

	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/application/orchestrators"
)

func signUpDeps() orchestrators.SignUpDeps {
	return orchestrators.SignUpDeps{
		Identity: app.Identity,
		ProvisionDeps: orchestrators.ProvisionDeps{
			Users:   stores.Users,
			Coaches: stores.Coaches,
			Outbox:  stores.Outbox,
		},
		Notifier: app.Notifier,
		Audit:    stores.Audit,
		Now:      now,
	}
}

func signInDeps() orchestrators.SignInDeps {
	return orchestrators.SignInDeps{
		Identity: app.Identity,
		Users:    stores.Users,
		Audit:    stores.Audit,
		Now:      now,
	}
}

func verifyDeps() orchestrators.VerifyEmailDeps {
	return orchestrators.VerifyEmailDeps{Identity: app.Identity, Notifier: app.Notifier}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type signUpResponse struct {
	UserID               string `json:"user_id"`
	VerificationRequired bool   `json:"verification_required"`
}

// handleAPISignUp handles POST /api/auth/signup.
func handleAPISignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Role:      req.Role,
		IP:        remoteIP(r),
		UserAgent: r.UserAgent(),
	}, signUpDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{UserID: res.UserID, VerificationRequired: res.VerificationRequired})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// signIn runs the sign-in use case and starts a cookie session.
func signIn(w http.ResponseWriter, r *http.Request, email, password string) (orchestrators.SignInResult, error) {
	res, err := orchestrators.ExecuteSignIn(r.Context(), orchestrators.SignInInput{
		Email:     email,
		Password:  password,
		IP:        remoteIP(r),
		UserAgent: r.UserAgent(),
	}, signInDeps())
	if err != nil {
		return res, err
	}
	token, err := sessions.Create(res.UserID, res.Email, res.Role)
	if err != nil {
		return res, err
	}
	middleware.SetSessionCookie(w, token, app.Secure)
	return res, nil
}

// handleAPILogin handles POST /api/auth/login.
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := signIn(w, r, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:       res.UserID,
		Email:        res.Email,
		FullName:     res.FullName,
		Role:         res.Role,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

// signOut ends the cookie session, if any, and audits the logout.
func signOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w, app.Secure)
	orchestrators.ExecuteSignOut(r.Context(), actorFrom(r), stores.Audit)
}

// handleAPILogout handles POST /api/auth/logout.
func handleAPILogout(w http.ResponseWriter, r *http.Request) {
	signOut(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIVerify handles POST /api/auth/verify.
func handleAPIVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := orchestrators.ExecuteVerifyEmail(r.Context(), req.Token, verifyDeps()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// handleAPIResend handles POST /api/auth/resend. The answer is the same
// whether or not the address is registered.
func handleAPIResend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := orchestrators.ExecuteResendVerification(r.Context(), req.Email, verifyDeps()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// handleGetMe handles GET /api/me.
func handleGetMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	u, err := stores.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updateMeRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	CityID   string `json:"city_id"`
}

// handleUpdateMe handles PUT /api/me.
func handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	var req updateMeRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := orchestrators.ExecuteUpdateMe(r.Context(), orchestrators.UpdateMeInput{
		Actor:    actorFrom(r),
		FullName: req.FullName,
		Phone:    req.Phone,
		CityID:   req.CityID,
	}, orchestrators.UpdateMeDeps{
		Users:  stores.Users,
		Cities: stores.Cities,
		Audit:  stores.Audit,
		Now:    now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
