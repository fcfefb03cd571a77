package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/gokv/errors"
)

// AuthConfig configures bearer-token authentication.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
	// SkipPaths are exact paths served without a token.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`

	// TokenValidator overrides the HS256 validator built from Secret.
	TokenValidator func(token string) (jwt.MapClaims, error) `yaml:"-" mapstructure:"-"`
}

// Validate requires a secret or validator when auth is enabled.
func (c *AuthConfig) Validate() error {
	if c.Enabled && c.Secret == "" && c.TokenValidator == nil {
		return errors.MissingField("auth.secret")
	}
	return nil
}

type claimsKey struct{}

// ClaimsFromContext returns the claims of an authenticated request.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// JWTValidator returns a validator accepting HS256 tokens signed with
// secret. A non-empty issuer must match the iss claim.
func JWTValidator(secret, issuer string) func(string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)
	return func(raw string) (jwt.MapClaims, error) {
		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			return nil, err
		}
		return claims, nil
	}
}

// Auth returns middleware that requires a valid Bearer token on every path
// outside SkipPaths. Validated claims are stored in the request context.
func Auth(cfg AuthConfig) Middleware {
	validate := cfg.TokenValidator
	if validate == nil {
		validate = JWTValidator(cfg.Secret, cfg.Issuer)
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, errors.Unauthorized("authorization header required"))
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeError(w, errors.Unauthorized("invalid token").WithCause(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
