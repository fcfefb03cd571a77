package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers" mapstructure:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is how long, in seconds, browsers may cache a preflight answer.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// corsPolicy is CORSConfig with the header values joined once.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	methods     string
	headers     string
	exposed     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg *CORSConfig) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

func (p corsPolicy) apply(h http.Header, origin string, preflight bool) {
	h.Add("Vary", "Origin")
	if !p.allows(origin) {
		return
	}
	h.Set("Access-Control-Allow-Origin", origin)
	setIf(h, "Access-Control-Allow-Methods", p.methods)
	setIf(h, "Access-Control-Allow-Headers", p.headers)
	setIf(h, "Access-Control-Expose-Headers", p.exposed)
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if preflight {
		setIf(h, "Access-Control-Max-Age", p.maxAge)
	}
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

// CORS answers OPTIONS preflights with 204 and decorates other responses
// with CORS headers when the Origin is allowed.
func CORS(cfg *CORSConfig) Middleware {
	policy := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			preflight := r.Method == http.MethodOptions
			policy.apply(w.Header(), r.Header.Get("Origin"), preflight)
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
