package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/usecase"
)

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, secure bool, domain string, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret:   []byte(secret),
		CookieName:   "approver_session",
		CookieDomain: domain, // "" is fine for a host-only cookie
		SecureCookie: secure, // true in prod (TLS)
		TTL:          ttl,
	}}
}

// ApproverClaims carries the role and jurisdiction the decision endpoints
// enforce. The jurisdiction fields mirror model.Jurisdiction: empty means
// unrestricted at that level.
type ApproverClaims struct {
	Role         string `json:"role"`
	StateCode    string `json:"state_code,omitempty"`
	DistrictCode string `json:"district_code,omitempty"`
	ClubCode     string `json:"club_code,omitempty"`
	jwt.RegisteredClaims
}

// Approver converts the claims into the use-case shape.
func (c *ApproverClaims) Approver() usecase.Approver {
	return usecase.Approver{
		Role: model.Role(c.Role),
		Jurisdiction: model.Jurisdiction{
			StateCode:    c.StateCode,
			DistrictCode: c.DistrictCode,
			ClubCode:     c.ClubCode,
		},
	}
}

func (a *AuthManager) Mint(w http.ResponseWriter, subject string, approver usecase.Approver) (string, error) {
	now := time.Now()
	claims := ApproverClaims{
		Role:         string(approver.Role),
		StateCode:    approver.Jurisdiction.StateCode,
		DistrictCode: approver.Jurisdiction.DistrictCode,
		ClubCode:     approver.Jurisdiction.ClubCode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*ApproverClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*ApproverClaims, error) {
	claims := &ApproverClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
