package session

import (
	"context"
	"os"
	"strings"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// EnvUser overrides the operator name for CLI sessions.
const EnvUser = "PANEL_USER"

// fallbackUser is used when nothing identifies the operator.
const fallbackUser = "operator"

type userKey struct{}

// WithUser attaches an explicit user id to ctx, taking precedence over config and environment.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// EnvProvider resolves the caller from the context, the config and the process environment.
type EnvProvider struct {
	cfg    domain.Config
	getenv func(string) string
}

// NewEnvProvider builds a provider over cfg.
func NewEnvProvider(cfg domain.Config) *EnvProvider {
	return &EnvProvider{cfg: cfg, getenv: os.Getenv}
}

// Current implements ports.SessionProvider.
func (p *EnvProvider) Current(ctx context.Context) (string, domain.SessionContext) {
	user := p.resolveUser(ctx)
	sc := p.cfg.SessionContext(user)
	if p.cfg.Session.Locale == "" {
		if locale := localeFromEnv(p.getenv("LANG")); locale != "" {
			sc.Locale = locale
		}
	}
	return user, sc
}

func (p *EnvProvider) resolveUser(ctx context.Context) string {
	if user, ok := ctx.Value(userKey{}).(string); ok && strings.TrimSpace(user) != "" {
		return strings.TrimSpace(user)
	}
	candidates := []string{p.cfg.Session.ActingUser, p.getenv(EnvUser), p.getenv("USER"), p.getenv("USERNAME")}
	for _, candidate := range candidates {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return fallbackUser
}

// localeFromEnv turns "tr_TR.UTF-8" into "tr-TR".
func localeFromEnv(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(lang, "_", "-")
}

var _ ports.SessionProvider = (*EnvProvider)(nil)
