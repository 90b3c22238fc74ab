package grpc

import (
	"context"
	"errors"
	"maps"
	"strings"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	pb "github.com/dmitrijs2005/projectshelf/internal/proto"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.AuthResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, tokens, err := s.users.Register(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: userToPB(user)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	user, tokens, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "invalid email or password")
		}
		return nil, s.toStatus(ctx, "login", err)
	}

	return &pb.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: userToPB(user)}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}

	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "logout", err)
	}
	return &pb.LogoutResponse{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *pb.PasswordResetRequest) (*pb.PasswordResetResponse, error) {
	if err := s.resets.RequestReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "password reset request", err)
	}
	return &pb.PasswordResetResponse{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.ResetPasswordResponse, error) {
	if err := s.resets.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, "password reset", err)
	}
	return &pb.ResetPasswordResponse{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *pb.GetProfileRequest) (*pb.ProfileResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "get profile", err)
	}
	return &pb.ProfileResponse{User: userToPB(user)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.ProfileResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	patch := models.ProfilePatch{
		DisplayName: req.DisplayName,
		Title:       req.Title,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		SocialLinks: maps.Clone(req.SocialLinks),
	}
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, s.toStatus(ctx, "update profile", err)
	}

	s.logger.Info(ctx, "Profile updated", "user_id", userID)
	return &pb.ProfileResponse{User: userToPB(user)}, nil
}

func (s *GRPCServer) GetAvatarUploadUrl(ctx context.Context, req *pb.AvatarUploadUrlRequest) (*pb.AvatarUploadUrlResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	key, url, err := s.avatars.UploadURL(ctx, userID, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, "avatar upload url", err)
	}
	return &pb.AvatarUploadUrlResponse{Key: key, Url: url}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

// toStatus maps service errors onto gRPC codes. Unexpected errors are
// logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, detail(err, common.ErrorValidation))
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, detail(err, common.ErrorAlreadyExists)+" is already taken")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, "reset link is invalid")
	case errors.Is(err, common.ErrResetTokenExpired):
		return status.Error(codes.InvalidArgument, "reset link has expired")
	case errors.Is(err, common.ErrorRateLimited):
		return status.Error(codes.ResourceExhausted, common.ErrorRateLimited.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorDelivery):
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Unavailable, "could not send email, try again later")
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// detail is the part of err's message after "<kind>: ", or the kind itself.
func detail(err, kind error) string {
	msg, ok := strings.CutPrefix(err.Error(), kind.Error()+": ")
	if !ok || msg == "" {
		return kind.Error()
	}
	return msg
}

func userToPB(u *models.User) *pb.User {
	if u == nil {
		return nil
	}
	return &pb.User{
		Id:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		Title:         u.Title,
		Bio:           u.Bio,
		Avatar:        u.Avatar,
		SocialLinks:   maps.Clone(u.SocialLinks),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
