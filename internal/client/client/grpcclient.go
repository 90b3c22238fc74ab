package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/common"
	pb "github.com/dmitrijs2005/projectshelf/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokensKey is the local state key holding the persisted token pair.
const TokensKey = "auth_tokens"

// TokenSlot persists the token pair. Get returns (nil, nil) when absent.
type TokenSlot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
	slot        TokenSlot

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	if err := s.setTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return err
	}

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily. slot may be nil, in which case
// tokens live only in memory. timeout bounds each call; zero disables it.
func NewGRPCClient(endpointURL string, slot TokenSlot, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, slot: slot, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	return nil
}

// RestoreTokens loads a previously persisted token pair.
func (s *GRPCClient) RestoreTokens(ctx context.Context) error {
	if s.slot == nil {
		return nil
	}
	raw, err := s.slot.Get(ctx, TokensKey)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	if raw == nil {
		return nil
	}
	var tp tokenPair
	if err := json.Unmarshal(raw, &tp); err != nil {
		_ = s.slot.Delete(ctx, TokensKey)
		return fmt.Errorf("load tokens: %w", err)
	}
	s.mu.Lock()
	s.accessToken, s.refreshToken = tp.AccessToken, tp.RefreshToken
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) setTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()

	if s.slot == nil {
		return nil
	}
	raw, err := json.Marshal(tokenPair{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return err
	}
	if err := s.slot.Set(ctx, TokensKey, raw); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *GRPCClient) clearTokens(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.mu.Unlock()

	if s.slot == nil {
		return nil
	}
	if err := s.slot.Delete(ctx, TokensKey); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := s.setTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	return identityFromPB(resp.User), nil
}

func (s *GRPCClient) Signup(ctx context.Context, email, password, username string) (*models.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &pb.RegisterUserRequest{Email: email, Password: password, Username: username}
	resp, err := s.client.RegisterUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := s.setTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	return identityFromPB(resp.User), nil
}

// SignOut revokes the refresh token on the server. Local tokens are dropped
// whatever the server answers.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, refresh := s.tokens()
	var rpcErr error
	if refresh != "" {
		if _, err := s.client.Logout(ctx, &pb.LogoutRequest{RefreshToken: refresh}); err != nil {
			rpcErr = s.mapError(err)
		}
	}
	return errors.Join(rpcErr, s.clearTokens(ctx))
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.RequestPasswordReset(ctx, &pb.PasswordResetRequest{Email: email}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// ResetPassword completes a reset with the token from the reset message.
func (s *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &pb.ResetPasswordRequest{Token: token, NewPassword: newPassword}
	if _, err := s.client.ResetPassword(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetProfile(ctx context.Context) (*models.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &pb.GetProfileRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return identityFromPB(resp.User), nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &pb.UpdateProfileRequest{
		DisplayName: patch.DisplayName,
		Title:       patch.Title,
		Bio:         patch.Bio,
		Avatar:      patch.Avatar,
		SocialLinks: maps.Clone(patch.SocialLinks),
	}
	resp, err := s.client.UpdateProfile(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return identityFromPB(resp.User), nil
}

// AvatarUploadURL returns the object key and a presigned PUT URL for a new avatar.
func (s *GRPCClient) AvatarUploadURL(ctx context.Context, contentType string) (string, string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetAvatarUploadUrl(ctx, &pb.AvatarUploadUrlRequest{ContentType: contentType})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.Url, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrValidation, st.Message())
	case codes.ResourceExhausted:
		return ErrRateLimited
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func identityFromPB(u *pb.User) *models.Identity {
	if u == nil {
		return nil
	}
	return &models.Identity{
		ID:            u.Id,
		Email:         u.Email,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		Title:         u.Title,
		Bio:           u.Bio,
		Avatar:        u.Avatar,
		SocialLinks:   models.SocialLinks(maps.Clone(u.SocialLinks)),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
