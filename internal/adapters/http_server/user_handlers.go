package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"huski_bookings/internal/app"
	"huski_bookings/internal/domain"
)

var validate = validator.New()

// apiError matches the express-validator style error list the original
// clients parse: {"errors":[{"msg":"..."}]}.
type apiError struct {
	Msg string `json:"msg"`
}

func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	out := make([]apiError, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, apiError{Msg: m})
	}
	writeJSON(w, status, map[string]any{"errors": out})
}

type registerRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
}

func validationMsgs(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Name":
			msgs = append(msgs, "name is required")
		case "Email":
			msgs = append(msgs, "please include a valid email")
		case "Password":
			msgs = append(msgs, "password must contain at least 8 characters")
		default:
			msgs = append(msgs, "invalid "+fe.Field())
		}
	}
	return msgs
}

func (h *Handlers) mountUserRoutes(mux *chi.Mux) {
	mux.Post("/register", h.register)
	mux.Post("/login", h.login)
	mux.Post("/logout", h.logout)
	mux.Post("/activationemail/{activation_token}", h.activate)
	mux.Post("/forget-password", h.forgetPassword)
	mux.Get("/reset-password/{id}/{token}", h.verifyReset)
	mux.Post("/reset-password/{id}/{token}", h.resetPassword)

	mux.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Tokens))
		r.Get("/allUsers", h.allUsers)
		r.Put("/updateUser/{userId}", h.updateUser)
		r.Delete("/deleteUser/{userId}", h.deleteUser)
	})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrors(w, http.StatusBadRequest, validationMsgs(err)...)
		return
	}

	err := h.Users.Register(r.Context(), app.Registration{
		Name: req.Name, Email: req.Email, Password: req.Password,
		Address: req.Address, Phone: req.Phone,
	})
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		writeErrors(w, http.StatusBadRequest, "User already exists")
	case err != nil:
		log.Error().Err(err).Msg("register failed")
		writeErrors(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"msg": "Please activate your account"})
	}
}

func (h *Handlers) activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "activation_token")
	session, _, err := h.Users.Activate(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			writeErrors(w, http.StatusBadRequest, "token is not valid")
			return
		}
		log.Error().Err(err).Msg("activation failed")
		writeErrors(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": session,
		"msg":   "Your account has been activated",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrors(w, http.StatusBadRequest, "Please include a valid email", "Password is required")
		return
	}

	token, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeErrors(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, domain.ErrNotVerified):
		writeErrors(w, http.StatusBadRequest, "Account not verified. Please check your email for activation.")
	case err != nil:
		log.Error().Err(err).Msg("login failed")
		writeErrors(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"payload": map[string]any{"id": u.ID, "role": u.Role},
			"token":   token,
		})
	}
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens: the client drops its copy; the cookie is expired for
	// browser clients that kept one.
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Expires: time.Unix(0, 0), Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"msg": "user logged out"})
}

func (h *Handlers) forgetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrors(w, http.StatusBadRequest, "Please include a valid email")
		return
	}

	err := h.Users.ForgotPassword(r.Context(), req.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "user not found"})
	case err != nil:
		log.Error().Err(err).Msg("password reset mail failed")
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "email not sent", "details": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"msg": "email sent successfully"})
	}
}

func userIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func (h *Handlers) verifyReset(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid user id"})
		return
	}
	err := h.Users.VerifyReset(r.Context(), id, chi.URLParam(r, "token"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "user not found"})
	case errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "token is not valid"})
	case err != nil:
		write500(w, err)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("verified"))
	}
}

func (h *Handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid user id"})
		return
	}
	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrors(w, http.StatusBadRequest, "password must contain at least 8 characters")
		return
	}

	err := h.Users.ResetPassword(r.Context(), id, chi.URLParam(r, "token"), req.Password)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "user not found"})
	case errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "token is not valid"})
	case err != nil:
		write500(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"msg": "password changed"})
	}
}

func (h *Handlers) allUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users(r.Context())
	if err != nil {
		write500(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r, "userId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrors(w, http.StatusBadRequest, validationMsgs(err)...)
		return
	}

	err := h.Users.UpdateUser(r.Context(), id, domain.UserUpdate{
		Name: req.Name, Email: req.Email, Password: req.Password,
		Address: req.Address, Phone: req.Phone,
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	case err != nil:
		write500(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
	}
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r, "userId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	err := h.Users.DeleteUser(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	case err != nil:
		write500(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
	}
}
