package backendfake

import (
	"net/http"

	"github.com/jrsteele09/uniassist/api"
)

func (s *Server) initRoutes() {
	// AUTH, no bearer required
	s.RegisterRouteFunc("POST "+api.RouteAuthGoogle, ChainMiddleware(s.GoogleLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+api.RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+api.RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// USERS
	s.RegisterRouteFunc("GET "+api.RouteUserMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("PUT "+api.RouteUserMeGroup, ChainMiddleware(s.UpdateGroupHandler(), s.APIMiddleware(s.RequireAuth())...))

	// ASSISTANT
	s.RegisterRouteFunc("POST "+api.RouteChat, ChainMiddleware(s.ChatHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+api.RouteFiles, ChainMiddleware(s.ListFilesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+api.RouteFiles, ChainMiddleware(s.UploadFileHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("DELETE "+api.RouteFile, ChainMiddleware(s.DeleteFileHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+api.RouteSchedule, ChainMiddleware(s.ScheduleHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+api.RouteTasks, ChainMiddleware(s.ListTasksHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+api.RouteTasks, ChainMiddleware(s.CreateTaskHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("PUT "+api.RouteTask, ChainMiddleware(s.UpdateTaskHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("DELETE "+api.RouteTask, ChainMiddleware(s.DeleteTaskHandler(), s.APIMiddleware(s.RequireAuth())...))

	// CORS preflight for every API route
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.APIMiddleware()...))
}
