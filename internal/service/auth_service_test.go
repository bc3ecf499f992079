package service

import (
	"context"
	"testing"

	"craftery/internal/models"
	"craftery/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Tr0ub4dor&3"

func TestSignupCreatesAccountWithoutSession(t *testing.T) {
	db := setupServiceDB(t)
	sessions, mr := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	user, err := svc.Signup(context.Background(), SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	// The stored credential is a hash, never the plaintext.
	assert.NotEqual(t, strongPassword, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(strongPassword)))

	// Signup does not log the user in: no session record exists.
	assert.Empty(t, mr.Keys())
}

func TestSignupEmptyFields(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	_, err := svc.Signup(context.Background(), SignupInput{Username: "", Email: "x@example.com", Password: ""})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestSignupWeakPassword(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: "a",
	})
	assertAppErrorCode(t, err, models.CodeWeakPassword)

	appErr := err.(*models.AppError)
	assert.NotEmpty(t, appErr.Message)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	seedUser(t, db, "first", "taken@example.com")

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "second",
		Email:    "taken@example.com",
		Password: strongPassword,
	})
	assertAppErrorCode(t, err, models.CodeDuplicateEmail)
}

func TestSignupDuplicateUsername(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	seedUser(t, db, "taken", "first@example.com")

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "taken",
		Email:    "second@example.com",
		Password: strongPassword,
	})
	assertAppErrorCode(t, err, models.CodeDuplicateUsername)
}

func TestLoginIssuesValidSession(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "maker", strongPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, created.ID, user.ID)

	userID, ok, err := sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, created.ID, userID)
}

func TestLoginUnknownUser(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	_, _, err := svc.Login(context.Background(), "nobody", strongPassword)
	assertAppErrorCode(t, err, models.CodeUnknownUser)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "maker", "WrongPassword99!")
	assertAppErrorCode(t, err, models.CodeInvalidCredentials)
}

func TestLoginEmptyFields(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)

	_, _, err := svc.Login(context.Background(), "maker", "")
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestLogoutDestroysSession(t *testing.T) {
	db := setupServiceDB(t)
	sessions, _ := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "maker", strongPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, ok, err := sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutSurfacesStoreError(t *testing.T) {
	db := setupServiceDB(t)
	sessions, mr := setupSessionManager(t)
	svc := NewAuthService(repository.NewUserRepository(db), sessions)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{
		Username: "maker",
		Email:    "maker@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "maker", strongPassword)
	require.NoError(t, err)

	mr.Close()

	// A failed destroy is not a successful logout.
	err = svc.Logout(ctx, token)
	assertAppErrorCode(t, err, models.CodeStoreError)
}
