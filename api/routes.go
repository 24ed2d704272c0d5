// Package api holds the backend's route paths and JSON wire types, shared by
// the client services and the fake backend.
package api

import "strings"

// Route path constants
const (
	// Auth routes, never carry the client's bearer token
	AuthPrefix       = "/api/auth/"
	RouteAuthGoogle  = "/api/auth/google"
	RouteAuthRefresh = "/api/auth/refresh"
	RouteAuthLogout  = "/api/auth/logout"

	// User routes
	RouteUserMe      = "/api/users/me"
	RouteUserMeGroup = "/api/users/me/group"

	// Assistant routes
	RouteChat     = "/api/chat"
	RouteFiles    = "/api/files"
	RouteFile     = "/api/files/{id}"
	RouteSchedule = "/api/schedule"
	RouteTasks    = "/api/tasks"
	RouteTask     = "/api/tasks/{id}"
)

// IsAuthEndpoint reports whether path belongs to the authentication API.
func IsAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, AuthPrefix)
}

// WithID fills the {id} segment of a route pattern.
func WithID(pattern, id string) string {
	return strings.Replace(pattern, "{id}", id, 1)
}
