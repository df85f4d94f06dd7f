package api

import (
	"log"
	"net/http"
	"time"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.User       `json:"user"`
	Cart      []models.CartLine `json:"cart"` // null when no device was named
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var in auth.SignUpInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.Auth.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// login signs in and, when the request names a device, merges that
// device's cart into the user's cart straight away.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	sess, u, err := s.Auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u}
	if device, err := deviceID(r); err == nil {
		st, release, err := s.Carts.Acquire(r.Context(), device, u.ID)
		if err != nil {
			log.Printf("Error merging cart for user %s: %v", u.ID, err)
		} else {
			resp.Cart = st.Lines()
			release()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	if device, err := deviceID(r); err == nil {
		if _, release, err := s.Carts.Acquire(r.Context(), device, ""); err != nil {
			log.Printf("Error restoring guest cart: %v", err)
		} else {
			release()
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	var p models.Profile
	if err := decode(r, &p); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.Auth.UpdateProfile(r.Context(), u.ID, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
