package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AuthService_ServiceName = "projectshelf.auth.AuthService"

	AuthService_RegisterUser_FullMethodName         = "/projectshelf.auth.AuthService/RegisterUser"
	AuthService_Login_FullMethodName                = "/projectshelf.auth.AuthService/Login"
	AuthService_RefreshToken_FullMethodName         = "/projectshelf.auth.AuthService/RefreshToken"
	AuthService_Logout_FullMethodName               = "/projectshelf.auth.AuthService/Logout"
	AuthService_RequestPasswordReset_FullMethodName = "/projectshelf.auth.AuthService/RequestPasswordReset"
	AuthService_ResetPassword_FullMethodName        = "/projectshelf.auth.AuthService/ResetPassword"
	AuthService_GetProfile_FullMethodName           = "/projectshelf.auth.AuthService/GetProfile"
	AuthService_UpdateProfile_FullMethodName        = "/projectshelf.auth.AuthService/UpdateProfile"
	AuthService_GetAvatarUploadUrl_FullMethodName   = "/projectshelf.auth.AuthService/GetAvatarUploadUrl"
	AuthService_Ping_FullMethodName                 = "/projectshelf.auth.AuthService/Ping"
)

// AuthServiceServer is implemented by the auth server.
type AuthServiceServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	RequestPasswordReset(context.Context, *PasswordResetRequest) (*PasswordResetResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	GetAvatarUploadUrl(context.Context, *AvatarUploadUrlRequest) (*AvatarUploadUrlResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedAuthServiceServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedAuthServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedAuthServiceServer) RequestPasswordReset(context.Context, *PasswordResetRequest) (*PasswordResetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestPasswordReset not implemented")
}
func (UnimplementedAuthServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetPassword not implemented")
}
func (UnimplementedAuthServiceServer) GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedAuthServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedAuthServiceServer) GetAvatarUploadUrl(context.Context, *AvatarUploadUrlRequest) (*AvatarUploadUrlResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAvatarUploadUrl not implemented")
}
func (UnimplementedAuthServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthService_ServiceDesc describes the service for grpc.ServiceRegistrar.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService_ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterUser", Handler: unaryHandler(AuthService_RegisterUser_FullMethodName, AuthServiceServer.RegisterUser)},
		{MethodName: "Login", Handler: unaryHandler(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(AuthService_RefreshToken_FullMethodName, AuthServiceServer.RefreshToken)},
		{MethodName: "Logout", Handler: unaryHandler(AuthService_Logout_FullMethodName, AuthServiceServer.Logout)},
		{MethodName: "RequestPasswordReset", Handler: unaryHandler(AuthService_RequestPasswordReset_FullMethodName, AuthServiceServer.RequestPasswordReset)},
		{MethodName: "ResetPassword", Handler: unaryHandler(AuthService_ResetPassword_FullMethodName, AuthServiceServer.ResetPassword)},
		{MethodName: "GetProfile", Handler: unaryHandler(AuthService_GetProfile_FullMethodName, AuthServiceServer.GetProfile)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(AuthService_UpdateProfile_FullMethodName, AuthServiceServer.UpdateProfile)},
		{MethodName: "GetAvatarUploadUrl", Handler: unaryHandler(AuthService_GetAvatarUploadUrl_FullMethodName, AuthServiceServer.GetAvatarUploadUrl)},
		{MethodName: "Ping", Handler: unaryHandler(AuthService_Ping_FullMethodName, AuthServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "projectshelf/auth.json",
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}
