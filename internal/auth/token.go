package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure classes. MissingToken and MalformedToken map to 401,
// InvalidToken and InvalidPayload to 403.
var (
	ErrMissingToken   = errors.New("token manquant")
	ErrMalformedToken = errors.New("token mal formaté")
	ErrInvalidToken   = errors.New("token invalide")
	ErrInvalidPayload = errors.New("token invalide (payload)")
)

const bearerPrefix = "Bearer "

// wireClaims is the JWT payload shape: {id, username, role} plus the
// registered claims.
type wireClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified claim set attached to a request.
type Identity struct {
	Subject   string
	Username  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Sign(subject, username string, role Role) (string, error) {
	now := time.Now()
	claims := wireClaims{
		ID:       subject,
		Username: username,
		Role:     role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks a raw Authorization header value and returns the identity it
// carries. The role claim is mandatory and must parse into the closed role
// set even when the signature is valid.
func (v *Verifier) Verify(authorization string) (*Identity, error) {
	if authorization == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, ErrMalformedToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))
	if raw == "" {
		return nil, ErrMalformedToken
	}

	var claims wireClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		return nil, ErrInvalidPayload
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	id := &Identity{
		Subject:  claims.ID,
		Username: claims.Username,
		Role:     role,
	}
	if id.Subject == "" {
		id.Subject = claims.Subject
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
