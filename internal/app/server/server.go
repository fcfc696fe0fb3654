package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/FarahBaraket-03/ChatTily/internal/app/server/handlers"
	"github.com/FarahBaraket-03/ChatTily/internal/core/contracts"
	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
	"github.com/FarahBaraket-03/ChatTily/pkg/middleware"
)

type Server struct {
	mux         *http.ServeMux
	addr        string
	app         string
	log         *slog.Logger
	wsHandler   *handlers.WSHandler
	chatHandler *handlers.ChatHandler
	userHandler *handlers.UserHandler
	tokenSvc    *services.TokenService
}

func NewServer(
	log *slog.Logger,
	app, addr string,
	tokenSvc *services.TokenService,
	presence contracts.Presence,
	rooms contracts.Rooms,
	roomSvc *services.RoomService,
	msgSvc *services.MessageService,
	friendSvc *services.FriendService,
	profiles contracts.ProfileSource,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		addr:        addr,
		app:         app,
		log:         log,
		wsHandler:   handlers.NewWSHandler(presence, rooms, msgSvc, friendSvc),
		chatHandler: handlers.NewChatHandler(roomSvc, msgSvc),
		userHandler: handlers.NewUserHandler(profiles),
		tokenSvc:    tokenSvc,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.tokenSvc)
	logged := middleware.RequestLogger(s.log)
	traced := middleware.TracerMiddleware(s.app)

	protect := func(h http.HandlerFunc) http.Handler {
		return traced(logged(auth(h)))
	}

	s.mux.Handle("/ws", protect(s.wsHandler.Handler))

	s.mux.Handle("GET /group/messages/{chatId}", protect(s.chatHandler.ListMessages))
	s.mux.Handle("POST /group", protect(s.chatHandler.CreateRoom))
	s.mux.Handle("POST /group/add-member/{chatId}", protect(s.chatHandler.AddMember))
	s.mux.Handle("POST /group/remove-member/{chatId}", protect(s.chatHandler.RemoveMember))
	s.mux.Handle("POST /group/leave/{chatId}", protect(s.chatHandler.LeaveRoom))
	s.mux.Handle("DELETE /group/{chatId}", protect(s.chatHandler.DeleteRoom))
	s.mux.Handle("PATCH /group/messages/{messageId}", protect(s.chatHandler.DeleteMessage))
	s.mux.Handle("GET /users/{userId}", protect(s.userHandler.GetProfile))
}

func (s *Server) Start() error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	s.log.Info("server starting", "addr", s.addr)
	return server.ListenAndServe()
}
