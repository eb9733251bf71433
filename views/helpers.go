package views

import (
	"context"

	"github.com/AdamBeresnev/trivia-tournament/internal/host"
	"github.com/AdamBeresnev/trivia-tournament/internal/middleware"
)

func GetHost(ctx context.Context) *host.Host {
	return middleware.GetAuthenticatedHost(ctx)
}
