package middleware

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

// maxAuthBody bounds how much of a request body is buffered for the
// password check.
const maxAuthBody = 1 << 20

// Gate compares admin passwords against a stored hash. The hash is either
// a bcrypt hash ("$2a$...", "$2b$...", "$2y$...") or a hex SHA-256 digest.
type Gate struct {
	hash string
}

func NewGate(hash string) *Gate {
	return &Gate{hash: strings.TrimSpace(hash)}
}

// Enabled reports whether a hash is configured. A gate without a hash
// rejects every password.
func (g *Gate) Enabled() bool { return g != nil && g.hash != "" }

func (g *Gate) Check(password string) bool {
	if !g.Enabled() || password == "" {
		return false
	}
	if isBcrypt(g.hash) {
		return bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(password)) == nil
	}
	sum := sha256.Sum256([]byte(password))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(g.hash))) == 1
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

type passwordPayload struct {
	Password string `json:"password"`
}

// RequirePassword only permits requests whose JSON body carries a
// password accepted by g. The body is restored for the next handler.
func RequirePassword(g *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
			_ = r.Body.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad payload")
				return
			}
			var p passwordPayload
			if err := json.Unmarshal(body, &p); err != nil {
				writeError(w, http.StatusBadRequest, "bad payload")
				return
			}
			if !g.Check(p.Password) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
