package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
	"github.com/jjudge-oj/userapi/types"
	"go.uber.org/zap"
)

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
	paginator   Paginator
	logger      *zap.Logger
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService, paginator Paginator, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		userService: userService,
		paginator:   paginator,
		logger:      logger,
	}
}

// UsersRouter registers user routes on the given router. Mounted
// sub-routers answer "/{userID}" and "/{userID}/" alike.
func UsersRouter(r chi.Router, handler *UserHandler) {
	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Patch("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r.URL.Query())
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	if !h.paginator.Enabled() {
		users, err := h.userService.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, h.logger, err, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, newUserResponses(users))
		return
	}

	count, err := h.userService.Count(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to count users")
		return
	}
	window, err := h.paginator.Window(r, count)
	if err != nil {
		writeError(w, http.StatusNotFound, detailInvalidPage)
		return
	}

	filter.Limit = window.Size
	filter.Offset = window.Offset()
	users, err := h.userService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, NewPage(r, window, newUserResponses(users)))
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if !Allow(actor, r.Method, nil) {
		writeDenied(w, actor)
		return
	}

	var req CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := h.userService.CreateUser(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create user")
		return
	}

	h.logger.Info("user created", zap.Int("user_id", created.ID), zap.Int("actor_id", actor.ID))
	writeJSON(w, http.StatusCreated, NewUserResponse(created))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewUserResponse(user))
}

// UpdateUser serves both PUT and PATCH. Every field is optional, so the two
// only differ in intent.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	actor := ActorFromContext(r.Context())
	if !Allow(actor, r.Method, &target) {
		writeDenied(w, actor)
		return
	}

	var req UpdateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), target.ID, req.toPatch(actor))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, NewUserResponse(updated))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	actor := ActorFromContext(r.Context())
	if !Allow(actor, r.Method, &target) {
		writeDenied(w, actor)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), target.ID); err != nil {
		writeServiceError(w, h.logger, err, "failed to delete user")
		return
	}

	h.logger.Info("user deleted", zap.Int("user_id", target.ID), zap.Int("actor_id", actor.ID))
	w.WriteHeader(http.StatusNoContent)
}

// loadUser resolves {userID} before any policy check, so unknown ids are 404
// for every actor.
func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	id, ok := parseUserID(r)
	if !ok {
		writeError(w, http.StatusNotFound, detailNotFound)
		return types.User{}, false
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, detailNotFound)
			return types.User{}, false
		}
		writeServiceError(w, h.logger, err, "failed to fetch user")
		return types.User{}, false
	}
	return user, true
}
