package authoriser

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
)

const (
	CapabilityListingsWrite = "listings:write"

	SessionName = "____tc"
	sessionKey  = "jwt"

	DefaultTokenTTL = 7 * 24 * time.Hour
)

type AuthRq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the authenticated caller and what it may do.
type Identity struct {
	Email        string   `json:"email"`
	Capabilities []string `json:"capabilities"`
}

func (i Identity) Can(capability string) bool {
	for _, c := range i.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Claims struct {
	Email        string   `json:"email"`
	Capabilities []string `json:"capabilities"`
	jwt.StandardClaims
}

type Authoriser struct {
	adminEmail        string
	adminPasswordHash []byte
	signingKey        []byte
	sessionStore      *sessions.CookieStore
	issuer            string
	ttl               time.Duration
	now               func() time.Time
}

func NewAuthoriser(adminEmail string, adminPasswordHash, signingKey []byte, sessionStore *sessions.CookieStore, issuer string) Authoriser {
	return Authoriser{
		adminEmail:        strings.ToLower(adminEmail),
		adminPasswordHash: adminPasswordHash,
		signingKey:        signingKey,
		sessionStore:      sessionStore,
		issuer:            issuer,
		ttl:               DefaultTokenTTL,
		now:               time.Now,
	}
}

// Login checks the admin credentials.
func (a Authoriser) Login(rq AuthRq) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(rq.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.adminEmail)) == 1
	// always pay for the hash comparison
	pwErr := bcrypt.CompareHashAndPassword(a.adminPasswordHash, []byte(rq.Password))
	if !emailOK || pwErr != nil {
		return Identity{}, apperror.New(apperror.KindUnauthorized, "invalid credentials")
	}
	return Identity{Email: email, Capabilities: []string{CapabilityListingsWrite}}, nil
}

func (a Authoriser) IssueToken(id Identity) (string, error) {
	now := a.now().UTC()
	claims := Claims{
		Email:        id.Email,
		Capabilities: id.Capabilities,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(a.ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    a.issuer,
			Subject:   id.Email,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
}

// SaveSession stores token in the cookie session.
func (a Authoriser) SaveSession(w http.ResponseWriter, r *http.Request, token string) error {
	// an undecodable cookie still yields a fresh session, which replaces it
	sess, _ := a.sessionStore.Get(r, SessionName)
	sess.Values[sessionKey] = token
	return sess.Save(r, w)
}

// Authorize resolves the caller from a bearer token or, failing that, the
// session cookie.
func (a Authoriser) Authorize(r *http.Request) (Identity, error) {
	tk := bearer(r)
	if tk == "" {
		if sess, err := a.sessionStore.Get(r, SessionName); err == nil {
			tk, _ = sess.Values[sessionKey].(string)
		}
	}
	if tk == "" {
		return Identity{}, apperror.New(apperror.KindUnauthorized, "authentication required")
	}
	token, err := jwt.ParseWithClaims(tk, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.New(apperror.KindUnauthorized, "unexpected signing method")
		}
		return a.signingKey, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperror.Wrap(err, apperror.KindUnauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Email == "" {
		return Identity{}, apperror.New(apperror.KindUnauthorized, "invalid token claims")
	}
	return Identity{Email: claims.Email, Capabilities: claims.Capabilities}, nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
