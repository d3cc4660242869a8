package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"linkup-service/internal/config"
	"linkup-service/internal/models"
	"linkup-service/pkg/logger"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", ExpirationTime: 3600000000000}
}

func newAuthService(users *fakeUserRepo, codes *fakeCodeRepo, mailer *fakeMailer) AuthService {
	return NewAuthService(users, codes, mailer, testJWTConfig(), logger.NewNop())
}

func TestRegisterEmailsCode(t *testing.T) {
	var created *models.User
	users := &fakeUserRepo{
		CreateFn: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			created = u
			return nil
		},
	}
	codes := newFakeCodeRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(users, codes, mailer)

	err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.False(t, created.Verified)
	assert.Equal(t, models.DefaultAvatar, created.Avatar)
	assert.NotEqual(t, "hunter22", created.Password, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("hunter22")))

	assert.Equal(t, []string{"alice@example.com"}, mailer.sent)
	assert.Len(t, codes.codes["alice@example.com"], 6)
}

func TestRegisterVerifiedEmailTaken(t *testing.T) {
	users := &fakeUserRepo{
		FindByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: primitive.NewObjectID(), Email: email, Verified: true}, nil
		},
	}
	svc := newAuthService(users, newFakeCodeRepo(), &fakeMailer{})

	err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyFlipsAccount(t *testing.T) {
	userID := primitive.NewObjectID()
	var updated bson.M
	users := &fakeUserRepo{
		FindByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: userID, Email: email}, nil
		},
		UpdateFn: func(_ context.Context, _ primitive.ObjectID, fields bson.M) error {
			updated = fields
			return nil
		},
	}
	codes := newFakeCodeRepo()
	codes.codes["alice@example.com"] = "123456"
	svc := newAuthService(users, codes, &fakeMailer{})

	err := svc.Verify(context.Background(), &models.VerifyRequest{Email: "alice@example.com", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, true, updated["verified"])
	assert.Empty(t, codes.codes["alice@example.com"], "code must be burned after use")

	err = svc.Verify(context.Background(), &models.VerifyRequest{Email: "alice@example.com", Code: "123456"})
	assert.ErrorIs(t, err, ErrInvalidCode, "a burned code must not verify again")
}

func TestVerifyWrongCode(t *testing.T) {
	codes := newFakeCodeRepo()
	codes.codes["alice@example.com"] = "123456"
	svc := newAuthService(&fakeUserRepo{}, codes, &fakeMailer{})

	err := svc.Verify(context.Background(), &models.VerifyRequest{Email: "alice@example.com", Code: "654321"})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestResendCodeLimit(t *testing.T) {
	users := &fakeUserRepo{
		FindByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: primitive.NewObjectID(), Email: email}, nil
		},
	}
	codes := newFakeCodeRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(users, codes, mailer)

	for i := 0; i < resendLimit; i++ {
		require.NoError(t, svc.ResendCode(context.Background(), "alice@example.com"))
	}
	err := svc.ResendCode(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrResendLimit)
	assert.Len(t, mailer.sent, resendLimit)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userID := primitive.NewObjectID()
	verified := true
	users := &fakeUserRepo{
		FindByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: userID, Email: email, Password: string(hash), Verified: verified}, nil
		},
	}
	svc := newAuthService(users, newFakeCodeRepo(), &fakeMailer{})

	resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "a@b.c", Password: "hunter22"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, userID.Hex(), resp.UserID)
	assert.NotEmpty(t, resp.Token)

	// The issued token resolves back to the user.
	subject, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), subject)

	_, err = svc.Login(context.Background(), &models.LoginRequest{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	verified = false
	_, err = svc.Login(context.Background(), &models.LoginRequest{Email: "a@b.c", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&fakeUserRepo{}, newFakeCodeRepo(), &fakeMailer{})

	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordNeedsLiveCode(t *testing.T) {
	userID := primitive.NewObjectID()
	var updated bson.M
	users := &fakeUserRepo{
		FindByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: userID, Email: email}, nil
		},
		UpdateFn: func(_ context.Context, _ primitive.ObjectID, fields bson.M) error {
			updated = fields
			return nil
		},
	}
	codes := newFakeCodeRepo()
	svc := newAuthService(users, codes, &fakeMailer{})

	err := svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		NewPassword: "newpass99",
	})
	assert.ErrorIs(t, err, ErrInvalidCode)

	codes.resets["alice@example.com"] = "123456"
	require.NoError(t, svc.VerifyResetCode(context.Background(), &models.VerifyRequest{
		Email: "alice@example.com",
		Code:  "123456",
	}))
	require.NoError(t, svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		NewPassword: "newpass99",
	}))

	hashed, _ := updated["password"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("newpass99")))
	assert.Empty(t, codes.resets["alice@example.com"])
}
