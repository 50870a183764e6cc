package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/types"
	"github.com/pasturelink/pasturelink-backend/internal/utils"
)

// JWTClaims carries the organization identity alongside the user so every
// authenticated request knows which side of the marketplace it acts for.
type JWTClaims struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationType string `json:"organization_type"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"` // producer|processor
	Phone            string `json:"phone,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	orgRepo       repos.OrganizationRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	orgRepo repos.OrganizationRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		orgRepo:       orgRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RegisterUser creates the organization and its first user in one
// transaction.
func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, apierr.InvalidArgument(fmt.Errorf("email and password are required"))
	}
	if input.OrganizationType != types.OrgTypeProducer && input.OrganizationType != types.OrgTypeProcessor {
		return nil, apierr.InvalidArgument(fmt.Errorf("organization type must be producer or processor"))
	}
	if input.OrganizationName == "" {
		return nil, apierr.InvalidArgument(fmt.Errorf("organization name is required"))
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apierr.AlreadyExists(fmt.Errorf("email %s is already registered", email))
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("hash password: %w", err))
	}

	org := &types.Organization{
		ID:    uuid.New(),
		Name:  utils.NormalizeInputString(input.OrganizationName),
		Type:  input.OrganizationType,
		Phone: input.Phone,
		City:  input.City,
		State: input.State,
	}
	user := &types.User{
		ID:             uuid.New(),
		Email:          email,
		Password:       hashed,
		FirstName:      utils.NormalizeInputString(input.FirstName),
		LastName:       utils.NormalizeInputString(input.LastName),
		OrganizationID: org.ID,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.orgRepo.Create(ctx, tx, org); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		if _, err := as.userRepo.Create(ctx, tx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.AlreadyExists(fmt.Errorf("email %s is already registered", email))
		}
		return nil, apierr.Persistence(err)
	}
	user.Organization = org
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = utils.NormalizeEmail(email)
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil || utils.CheckPassword(user.Password, password) != nil {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("invalid email or password"))
	}
	org, err := as.orgRepo.GetByID(ctx, nil, user.OrganizationID)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("load organization: %w", err))
	}

	accessToken, err := as.generateAccessToken(user, org)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("generate access token: %w", err))
	}
	refreshToken := uuid.New().String()
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("clear stale refresh tokens: %w", err)
		}
		_, err := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     refreshToken,
			ExpiresAt: time.Now().Add(as.refreshTTL),
		})
		return err
	})
	if err != nil {
		return "", "", apierr.Persistence(err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("refresh token is required"))
	}
	stored, err := as.userTokenRepo.GetByToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("load refresh token: %w", err))
	}
	if stored == nil || stored.ExpiresAt.Before(time.Now()) {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("refresh token is expired or unknown"))
	}
	user, err := as.userRepo.GetByID(ctx, nil, stored.UserID)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return "", "", apierr.NotAuthenticated(fmt.Errorf("user for refresh token no longer exists"))
	}
	org, err := as.orgRepo.GetByID(ctx, nil, user.OrganizationID)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("load organization: %w", err))
	}

	accessToken, err := as.generateAccessToken(user, org)
	if err != nil {
		return "", "", apierr.Persistence(fmt.Errorf("generate access token: %w", err))
	}
	newRefreshToken := uuid.New().String()
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByToken(ctx, tx, refreshToken); err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		_, err := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     newRefreshToken,
			ExpiresAt: time.Now().Add(as.refreshTTL),
		})
		return err
	})
	if err != nil {
		return "", "", apierr.Persistence(err)
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	if err := as.userTokenRepo.DeleteByUserID(ctx, nil, rd.UserID); err != nil {
		return apierr.Persistence(fmt.Errorf("delete refresh tokens: %w", err))
	}
	return nil
}

func (as *authService) generateAccessToken(user *types.User, org *types.Organization) (string, error) {
	claims := JWTClaims{
		OrganizationID:   org.ID.String(),
		OrganizationType: org.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("invalid user id in token: %w", err))
	}
	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return ctx, apierr.NotAuthenticated(fmt.Errorf("invalid organization id in token: %w", err))
	}
	rd := &requestdata.RequestData{
		TokenString:      tokenString,
		UserID:           userID,
		OrganizationID:   orgID,
		OrganizationType: requestdata.OrgType(claims.OrganizationType),
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
