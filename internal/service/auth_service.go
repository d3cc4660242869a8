package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"linkup-service/internal/adapters/mail"
	"linkup-service/internal/config"
	"linkup-service/internal/models"
	"linkup-service/internal/repository"
	"linkup-service/pkg/logger"
)

const (
	verifyCodeTTL    = time.Minute
	resetCodeTTL     = 10 * time.Minute
	resendWindow     = time.Hour
	resendLimit      = 3
	unverifiedMaxAge = 24 * time.Hour
)

// AuthService owns the account lifecycle: registration, email
// verification, username selection, login and password resets.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) error
	Verify(ctx context.Context, req *models.VerifyRequest) error
	ResendCode(ctx context.Context, email string) error
	SetUsername(ctx context.Context, req *models.UsernameRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, req *models.VerifyRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	ParseToken(token string) (string, error)
	RunCleanup(ctx context.Context, interval time.Duration)
}

type authService struct {
	users  repository.UserRepository
	codes  repository.CodeRepository
	mailer mail.Mailer
	jwtCfg *config.JWTConfig
	log    *logger.Logger
}

func NewAuthService(
	users repository.UserRepository,
	codes repository.CodeRepository,
	mailer mail.Mailer,
	jwtCfg *config.JWTConfig,
	log *logger.Logger,
) AuthService {
	return &authService{users: users, codes: codes, mailer: mailer, jwtCfg: jwtCfg, log: log}
}

// Register creates an unverified account and emails a verification
// code. Registering again over an unverified account refreshes it
// instead of failing, so an abandoned signup can be retried.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if existing != nil {
		if existing.Verified {
			return ErrEmailTaken
		}
		err = s.users.Update(ctx, existing.ID, bson.M{
			"name":     req.Name,
			"lastName": req.LastName,
			"password": string(hash),
		})
		if err != nil {
			return err
		}
	} else {
		user := &models.User{
			Name:     req.Name,
			LastName: req.LastName,
			Email:    req.Email,
			Password: string(hash),
			Avatar:   models.DefaultAvatar,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
	}

	return s.issueVerificationCode(ctx, req.Email)
}

// Verify checks the emailed code and flips the account to verified.
func (s *authService) Verify(ctx context.Context, req *models.VerifyRequest) error {
	stored, err := s.codes.GetVerificationCode(ctx, req.Email)
	if err != nil || stored == "" || stored != req.Code {
		return ErrInvalidCode
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return lookupErr(err)
	}
	if err := s.users.Update(ctx, user.ID, bson.M{"verified": true}); err != nil {
		return err
	}
	if err := s.codes.DeleteVerificationCode(ctx, req.Email); err != nil {
		s.log.Warn("delete verification code", "error", err)
	}
	return nil
}

// ResendCode re-issues the verification code, capped per hour.
func (s *authService) ResendCode(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr(err)
	}
	if user.Verified {
		return ErrInvalidCode
	}

	count, err := s.codes.IncrResend(ctx, email, resendWindow)
	if err != nil {
		return err
	}
	if count > resendLimit {
		return ErrResendLimit
	}
	return s.issueVerificationCode(ctx, email)
}

// SetUsername claims a unique handle, sets the display name and logs
// the account in.
func (s *authService) SetUsername(ctx context.Context, req *models.UsernameRequest) (*models.LoginResponse, error) {
	if existing, err := s.users.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, lookupErr(err)
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}

	err = s.users.Update(ctx, user.ID, bson.M{
		"userName":    req.Username,
		"displayName": req.DisplayName,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	token, err := s.signToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Success: true,
		Message: "username set",
		UserID:  user.ID.Hex(),
		Token:   token,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}

	token, err := s.signToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Success: true,
		Message: "login successful",
		UserID:  user.ID.Hex(),
		Token:   token,
	}, nil
}

// ForgotPassword emails a reset code. Unknown addresses get a silent
// success so the endpoint does not leak which emails have accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}

	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := s.codes.SetResetCode(ctx, email, code, resetCodeTTL); err != nil {
		return err
	}
	if err := s.mailer.Send(email, "Reset your LinkUp password", "Your password reset code is "+code); err != nil {
		s.log.Error("send reset email", "error", err)
		return err
	}
	return nil
}

func (s *authService) VerifyResetCode(ctx context.Context, req *models.VerifyRequest) error {
	stored, err := s.codes.GetResetCode(ctx, req.Email)
	if err != nil || stored == "" || stored != req.Code {
		return ErrInvalidCode
	}
	return nil
}

// ResetPassword replaces the password while the verified reset code is
// still live, then burns the code.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	stored, err := s.codes.GetResetCode(ctx, req.Email)
	if err != nil || stored == "" {
		return ErrInvalidCode
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return lookupErr(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, user.ID, bson.M{"password": string(hash)}); err != nil {
		return err
	}
	if err := s.codes.DeleteResetCode(ctx, req.Email); err != nil {
		s.log.Warn("delete reset code", "error", err)
	}
	return nil
}

// ParseToken validates a bearer token and returns the user id.
func (s *authService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// RunCleanup periodically removes accounts that never verified.
func (s *authService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-unverifiedMaxAge)
			deleted, err := s.users.DeleteUnverifiedBefore(ctx, cutoff)
			if err != nil {
				s.log.Error("cleanup unverified accounts", "error", err)
				continue
			}
			if deleted > 0 {
				s.log.Info("removed unverified accounts", "count", deleted)
			}
		}
	}
}

func (s *authService) issueVerificationCode(ctx context.Context, email string) error {
	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := s.codes.SetVerificationCode(ctx, email, code, verifyCodeTTL); err != nil {
		return err
	}
	if err := s.mailer.Send(email, "Verify your LinkUp account", "Your verification code is "+code); err != nil {
		s.log.Error("send verification email", "error", err)
		return err
	}
	return nil
}

func (s *authService) signToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.ExpirationTime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// randomCode draws a six digit verification code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
