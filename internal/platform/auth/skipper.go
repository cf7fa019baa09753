package auth

import (
	"github.com/labstack/echo/v4"
)

// publicRoutes lists method and route pairs reachable without a bearer token.
var publicRoutes = map[string]bool{
	"GET /health":                 true,
	"GET /health/db":              true,
	"POST /api/v1/users/register": true,
	"POST /api/v1/users/login":    true,
	"GET /api/v1/departments":     true,
	"GET /api/v1/specialties":     true,
	"GET /api/v1/doctors":         true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
// It matches on the registered route path, so it must run after routing.
func AuthSkipper(c echo.Context) bool {
	return IsPublicRoute(c.Request().Method, c.Path())
}

func IsPublicRoute(method, path string) bool {
	return publicRoutes[method+" "+path]
}
