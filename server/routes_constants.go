package server

// Route path constants. All application routes are defined here to ensure
// consistency and prevent typos.
const (
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthMe      = "/auth/me"

	RouteUserRegister = "/users/register"

	RouteHealthz = "/healthz"
)
