package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
	"github.com/jjudge-oj/userapi/types"
	"go.uber.org/zap"
)

const defaultTokenTTL = 24 * time.Hour

type contextKey string

const contextActorKey contextKey = "actor"

// Actor is the identity a request acts as. The zero value is anonymous.
type Actor struct {
	ID            int
	IsStaff       bool
	IsSuperuser   bool
	Authenticated bool
}

func actorFromUser(user types.User) Actor {
	return Actor{
		ID:            user.ID,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
		Authenticated: true,
	}
}

// ActorFromContext returns the actor stored by Authenticate, or an anonymous one.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(contextActorKey).(Actor)
	return actor
}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
	tokenTTL    time.Duration
	logger      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		userService: userService,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router. Routes expect the
// Authenticate middleware to run first.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/login", handler.Login)
	r.With(RequireActor).Get("/me", handler.Me)
}

// Authenticate resolves the bearer token, if any, into an Actor. Requests
// without an Authorization header continue as anonymous; a header that does
// not name an active user is rejected with 401.
func Authenticate(userService *services.UserService, jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header.")
				return
			}

			subject, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Given token not valid.")
				return
			}
			userID, err := strconv.Atoi(subject)
			if err != nil || userID < 1 {
				writeError(w, http.StatusUnauthorized, "Token contained no recognizable user identification.")
				return
			}

			user, err := userService.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "User not found.")
					return
				}
				logger.Error("failed to load token user", zap.Int("user_id", userID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to load user")
				return
			}
			if !user.IsActive {
				writeError(w, http.StatusUnauthorized, "User is inactive.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorFromUser(user))))
		})
	}
}

// RequireActor rejects anonymous requests.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).Authenticated {
			writeError(w, http.StatusUnauthorized, detailNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login verifies credentials, stamps last_login and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON parse error.")
		return
	}

	errs := &services.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		errs.Add("username", services.MsgRequired)
	}
	if req.Password == "" {
		errs.Add("password", services.MsgRequired)
	}
	if err := errs.Err(); err != nil {
		writeValidationError(w, errs)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "No active account found with the given credentials.")
			return
		}
		h.logger.Error("failed to authenticate", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Int("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokenTTL.Seconds()),
		User:      NewUserResponse(user),
	})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())

	user, err := h.userService.GetByID(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "User not found.")
			return
		}
		h.logger.Error("failed to load user", zap.Int("user_id", actor.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, NewUserResponse(user))
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      UserResponse `json:"user"`
}

// IssueToken signs a bearer token for userID.
func IssueToken(userID int, jwtSecret string, ttl time.Duration) (string, error) {
	return issueToken(userID, []byte(jwtSecret), ttl)
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
