package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// AdminCookieName is the operator dashboard session cookie.
const AdminCookieName = "admin_session"

// AdminSessionSigner mints and verifies the operator session cookie. The
// cookie value is "expiry.signature" so a stolen constant cannot be
// replayed past its window.
type AdminSessionSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewAdminSessionSigner constructs a signer keyed on the shared secret.
func NewAdminSessionSigner(secret string, ttl time.Duration) *AdminSessionSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AdminSessionSigner{secret: []byte(secret), ttl: ttl}
}

// Mint returns a fresh cookie value and its lifetime in seconds.
func (s *AdminSessionSigner) Mint() (string, int) {
	expiresAt := time.Now().Add(s.ttl).Unix()
	return fmt.Sprintf("%d.%s", expiresAt, s.sign(expiresAt)), int(s.ttl.Seconds())
}

// Verify reports whether a cookie value is authentic and unexpired.
func (s *AdminSessionSigner) Verify(value string) bool {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return false
	}
	expiresAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(s.sign(expiresAt)), []byte(parts[1])) {
		return false
	}
	return time.Now().Unix() < expiresAt
}

func (s *AdminSessionSigner) sign(expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "admin|%d", expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}

// SessionValid reports whether the request carries a live admin session.
func SessionValid(c *gin.Context, signer *AdminSessionSigner) bool {
	value, err := c.Cookie(AdminCookieName)
	if err != nil {
		return false
	}
	return signer.Verify(value)
}

// AdminGate protects the operator surface. API paths get a 401 envelope;
// page paths redirect to the login form, and a live session visiting the
// login form is bounced back to the dashboard.
func AdminGate(signer *AdminSessionSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isLogin := strings.HasPrefix(path, "/admin/login")
		isAPI := strings.HasPrefix(path, "/admin/api/")
		valid := SessionValid(c, signer)

		if !valid && !isLogin {
			if isAPI {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "admin session required"))
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		if valid && isLogin && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusFound, "/admin")
			c.Abort()
			return
		}

		c.Next()
	}
}
