package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/models"
	templates "github.com/lawchain/lawchain-api/templates/html"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		Address string `json:"address"`
		Email   string `json:"email"`
	} `json:"admin"`
}

// Admin represents the admin handler
type Admin struct {
	Bridge *chain.Bridge
	Hub    *Hub
	Config config.Config
}

// AdminLoginHandler handles admin login via email/password and returns a JWT
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email and password required"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := h.Bridge.Registry().IdentityByEmail(ctx, email)
	if err != nil || details == nil || details.Role != models.RoleAdmin {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(details.PasswordHash), []byte(req.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	jwtSecret := []byte(h.Config.AdminJWTSecret)
	if len(jwtSecret) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "server misconfigured"})
		return
	}

	claims := jwt.MapClaims{
		"sub":   details.Address,
		"email": details.Email,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token generation failed"})
		return
	}

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.Address = details.Address
	resp.Admin.Email = details.Email

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// requireAdmin validates the bearer JWT and its admin scope.
func (h Admin) requireAdmin(r *http.Request) error {
	raw := api.BearerToken(r)
	if raw == "" {
		return errors.New("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(h.Config.AdminJWTSecret), nil
	})
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["scope"] != "admin" {
		return errors.New("admin scope required")
	}
	return nil
}

// ApproveHandler flips approval for a lawyer or judge and notifies them by
// email when one is on file.
func (h Admin) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.requireAdmin(r); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}

	address := mux.Vars(r)["address"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := h.Bridge.Approve(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrUnregistered) {
			config.ErrorStatus("address not registered", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to approve identity", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("identity approved",
		"address", address,
		"role", details.Role,
	)
	h.Hub.Broadcast(CaseEvent{
		Type:   EventIdentityApproved,
		Action: "Account Approved",
		By:     address,
	})

	if details.Email != "" {
		go h.sendApprovalEmail(details)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"success": true, "address": "%s", "isApproved": true}`, address)))
}

// sendApprovalEmail notifies the user their account is active. Best-effort,
// a mail failure never fails the approval.
func (h Admin) sendApprovalEmail(details *models.UserDetails) {
	apiKey := os.Getenv("SENDGRID_API_TOKEN")
	if apiKey == "" {
		zap.S().Warn("SENDGRID_API_TOKEN not set, skipping approval email")
		return
	}

	subject := "Your LawChain account has been approved"
	body := fmt.Sprintf("Hello %s,\n\nYour %s account has been approved. You can now sign in and access your dashboard.",
		details.Name, details.Role)

	from := mail.NewEmail("LawChain", "notifications@lawchain.io")
	to := mail.NewEmail(details.Name, details.Email)
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send approval email", "email", details.Email, "error", err)
		return
	}
	zap.S().Infow("approval email sent", "email", details.Email, "status", resp.StatusCode)
}
