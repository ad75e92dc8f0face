package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/auth"
	"github.com/mmynk/rentbook/internal/models"
)

// whoami answers GetCurrentUser with the identity found in the context.
type whoami struct{}

func (whoami) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, nil)
}

func (whoami) UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, nil)
}

func (whoami) DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, nil)
}

func (whoami) GetCurrentUser(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: &api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)},
	}), nil
}

func (whoami) Login(ctx context.Context, _ *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return connect.NewResponse(&api.LoginResponse{Token: GetUserID(ctx)}), nil
}

func newTestClient(t *testing.T, interceptors ...connect.Interceptor) *api.AuthServiceClient {
	t.Helper()

	path, handler := api.NewAuthServiceHandler(whoami{}, connect.WithInterceptors(interceptors...))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewAuthServiceClient(http.DefaultClient, server.URL)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "rentbook-test", time.Hour)
	user := &models.User{ID: "user-1", Email: "owner@example.com"}
	token, err := jwtManager.Generate(user)
	require.NoError(t, err)

	client := newTestClient(t, RequireAuth(jwtManager, api.AuthServiceLoginProcedure))
	ctx := context.Background()

	t.Run("valid token populates context", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Bearer "+token)

		resp, err := client.GetCurrentUser(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", resp.Msg.User.ID)
		assert.Equal(t, "owner@example.com", resp.Msg.User.Email)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		_, err := client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Token "+token)

		_, err := client.GetCurrentUser(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("public procedure passes without token", func(t *testing.T) {
		resp, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{}))
		require.NoError(t, err)
		assert.Empty(t, resp.Msg.Token)
	})
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", "rentbook-test", time.Hour)
	client := newTestClient(t, OptionalAuth(jwtManager))

	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer garbage")

	resp, err := client.GetCurrentUser(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.User.ID)
}

func TestMetricsInterceptor(t *testing.T) {
	client := newTestClient(t, MetricsInterceptor())

	before := testutil.ToFloat64(rpcRequestsTotal.WithLabelValues(api.AuthServiceGetCurrentUserProcedure, "ok"))
	_, err := client.GetCurrentUser(context.Background(), connect.NewRequest(&api.GetCurrentUserRequest{}))
	require.NoError(t, err)

	after := testutil.ToFloat64(rpcRequestsTotal.WithLabelValues(api.AuthServiceGetCurrentUserProcedure, "ok"))
	assert.Equal(t, before+1, after)
}

func TestCodeLabel(t *testing.T) {
	assert.Equal(t, "ok", codeLabel(nil))
	assert.Equal(t, "not_found", codeLabel(connect.NewError(connect.CodeNotFound, errors.New("x"))))
	assert.Equal(t, "unknown", codeLabel(errors.New("x")))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFor(connect.CodeInternal))
	assert.Equal(t, slog.LevelError, levelFor(connect.CodeUnavailable))
	assert.Equal(t, slog.LevelWarn, levelFor(connect.CodeInvalidArgument))
	assert.Equal(t, slog.LevelWarn, levelFor(connect.CodeNotFound))
}
