package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskit/campuskit-backend/internal/platform/apierr"
	"github.com/campuskit/campuskit-backend/internal/platform/envutil"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/types"
)

type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	SchoolID  uuid.UUID `json:"school_id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	ParseToken(token string) (*Claims, error)
}

type authService struct {
	log      *logger.Logger
	users    repos.UserRepo
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(baseLog *logger.Logger, users repos.UserRepo) AuthService {
	return &authService{
		log:      baseLog.With("service", "AuthService"),
		users:    users,
		secret:   []byte(envutil.String("JWT_SECRET", "dev-only-secret")),
		tokenTTL: envutil.Duration("JWT_TTL", 24*time.Hour),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*types.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, "", apierr.New(http.StatusBadRequest, "INVALID_CREDENTIALS", errors.New("email and password are required"))
	}
	if input.SchoolID == uuid.Nil {
		return nil, "", apierr.New(http.StatusBadRequest, "MISSING_SCHOOL", errors.New("school_id is required"))
	}
	role := input.Role
	switch role {
	case types.RoleStudent, types.RoleProfessor, types.RoleAdmin:
	case "":
		role = types.RoleStudent
	default:
		return nil, "", apierr.New(http.StatusBadRequest, "INVALID_ROLE", errors.New("unknown role"))
	}

	exists, err := s.users.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apierr.New(http.StatusConflict, "EMAIL_TAKEN", errors.New("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &types.User{
		ID:        uuid.New(),
		SchoolID:  input.SchoolID,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      role,
	}
	if _, err := s.users.Create(ctx, nil, []*types.User{user}); err != nil {
		return nil, "", err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", "user_id", user.ID, "school_id", user.SchoolID, "role", user.Role)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", errors.New("invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", errors.New("invalid email or password"))
	}
	if err := s.users.TouchLastLogin(ctx, nil, user.ID); err != nil {
		s.log.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issueToken(user *types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		SchoolID: user.SchoolID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", errors.New("invalid token"))
	}
	return claims, nil
}
