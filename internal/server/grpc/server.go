// Package grpc exposes the auth services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/projectshelf/internal/logging"
	pb "github.com/dmitrijs2005/projectshelf/internal/proto"
	"github.com/dmitrijs2005/projectshelf/internal/server/models"
	"github.com/dmitrijs2005/projectshelf/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, email, password, username string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

type resetSvc interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type avatarSvc interface {
	UploadURL(ctx context.Context, userID, contentType string) (string, string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address   string
	users     userSvc
	resets    resetSvc
	avatars   avatarSvc
	metrics   *Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, rs resetSvc, as avatarSvc, m *Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		resets:    rs,
		avatars:   as,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	interceptors := []grpc.UnaryServerInterceptor{s.accessTokenInterceptor}
	if s.metrics != nil {
		interceptors = append([]grpc.UnaryServerInterceptor{s.metrics.UnaryInterceptor}, interceptors...)
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))

	pb.RegisterAuthServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
