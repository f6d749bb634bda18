package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths that bypass authentication. These are the
// infrastructure health checks and the active-channels listing, which the
// contact page renders before a patient signs in. Channel creation shares
// the path but is manager-gated, so only reads skip auth there.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
}

// AuthSkipper returns true for requests whose route should skip
// authentication. Skipped requests carry no claims, so tier-gated handlers
// registered on a public path still reject them.
func AuthSkipper(c echo.Context) bool {
	if publicPaths[c.Path()] {
		return true
	}
	return c.Path() == "/api/v1/channels" && c.Request().Method == http.MethodGet
}
