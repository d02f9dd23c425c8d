// Package tests contains integration tests for the call lifecycle and analytics
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/app/services"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	testingutil "github.com/sepehr-hosseini/simorgh-crm/testing"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		userRepo := repository.NewUserRepository(testDB.DB)
		tokenService, err := services.NewTokenService(
			1*time.Hour, 24*time.Hour, "test-issuer", "test-audience",
			false, "", "", "test-secret-key-for-signing")
		require.NoError(t, err)

		// nil captcha service: the captcha gate is skipped in tests
		loginFlow := businessflow.NewLoginFlow(userRepo, tokenService, nil, testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		t.Run("SuccessfulLogin", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			result, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, agent.ID, result.User.ID)
			assert.Equal(t, string(models.UserRoleAgent), result.User.Role)
			assert.NotEmpty(t, result.Session.AccessToken)
			assert.NotEmpty(t, result.Session.RefreshToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)

			claims, err := tokenService.ValidateToken(result.Session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, agent.ID, claims.UserID)
			assert.Equal(t, "access", claims.TokenType)

			// Last login is stamped
			updated, err := userRepo.ByID(ctx, agent.ID)
			require.NoError(t, err)
			require.NotNil(t, updated.LastLoginAt)
		})

		t.Run("UserNotFound", func(t *testing.T) {
			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Username: "nobody",
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("IncorrectPassword", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)
			agent.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(agent).Error)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("AdminLoginRejectsAgents", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			_, err = loginFlow.AdminLogin(ctx, &dto.AdminLoginRequest{
				Username: agent.Username,
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)
			// Role mismatch must be indistinguishable from a bad password
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("AdminLogin", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			result, err := loginFlow.AdminLogin(ctx, &dto.AdminLoginRequest{
				Username: admin.Username,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.UserRoleAdmin), result.User.Role)
		})

		t.Run("RefreshToken", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			result, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			session, err := loginFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: result.Session.RefreshToken,
			}, metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, session.AccessToken)
			assert.NotEmpty(t, session.RefreshToken)

			// Access tokens are not accepted as refresh tokens
			_, err = loginFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: result.Session.AccessToken,
			}, metadata)
			require.Error(t, err)
		})

		t.Run("ChangePassword", func(t *testing.T) {
			agent, err := fixtures.CreateTestAgent()
			require.NoError(t, err)

			_, err = loginFlow.ChangePassword(ctx, agent.ID, &dto.ChangePasswordRequest{
				CurrentPassword: "WrongPass123!",
				NewPassword:     "FreshPass456!",
				ConfirmPassword: "FreshPass456!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))

			resp, err := loginFlow.ChangePassword(ctx, agent.ID, &dto.ChangePasswordRequest{
				CurrentPassword: "TestPass123!",
				NewPassword:     "FreshPass456!",
				ConfirmPassword: "FreshPass456!",
			}, metadata)
			require.NoError(t, err)
			assert.False(t, resp.PasswordChangedAt.IsZero())

			// Old password is gone, new one works
			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Username: agent.Username,
				Password: "FreshPass456!",
			}, metadata)
			require.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
