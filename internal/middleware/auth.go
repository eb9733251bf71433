package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/AdamBeresnev/trivia-tournament/internal/host"
	"github.com/AdamBeresnev/trivia-tournament/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const HostIDKey ContextKey = "hostID"

// SessionHostKey is the session entry holding the logged in host's id.
const SessionHostKey = "hostID"

const GuestHostID = "00000000-0000-0000-0000-000000000001"

func InitAuth() {
	discordKey := os.Getenv("DISCORD_KEY")
	discordSecret := os.Getenv("DISCORD_SECRET")
	discordCallbackURL := os.Getenv("DISCORD_CALLBACK_URL")

	googleKey := os.Getenv("GOOGLE_KEY")
	googleSecret := os.Getenv("GOOGLE_SECRET")
	googleCallbackURL := os.Getenv("GOOGLE_CALLBACK_URL")

	goth.UseProviders(
		discord.New(discordKey, discordSecret, discordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail),
		google.New(googleKey, googleSecret, googleCallbackURL, "email", "profile"),
	)
}

// RequireHost rejects requests without a logged in host. Browsers are sent to
// the login page, API clients get a 401.
func RequireHost(sessionManager *scs.SessionManager, hostStore *store.HostStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hostIDStr := sessionManager.GetString(r.Context(), SessionHostKey)
			if hostIDStr == "" {
				unauthorized(w, r)
				return
			}

			hostID, err := uuid.Parse(hostIDStr)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionHostKey)
				unauthorized(w, r)
				return
			}

			ctx := WithHostID(r.Context(), hostID)

			// Add the host to context so that views can show who is logged in
			h, err := hostStore.GetHost(ctx, hostID)
			if err == nil {
				ctx = context.WithValue(ctx, host.HostKey, h)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

func WithHostID(ctx context.Context, hostID uuid.UUID) context.Context {
	return context.WithValue(ctx, HostIDKey, hostID)
}

func GetHostIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(HostIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedHost(ctx context.Context) *host.Host {
	val := ctx.Value(host.HostKey)
	if val == nil {
		return nil
	}
	h, ok := val.(*host.Host)
	if !ok {
		return nil
	}
	return h
}
