package services

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/projectshelf/internal/common"
	sc "github.com/dmitrijs2005/projectshelf/internal/server/config"
	"github.com/google/uuid"
)

// AvatarURLValidity is how long an upload URL stays usable.
const AvatarURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// AvatarKeyPrefix is the object key prefix reserved for userID's avatars.
func AvatarKeyPrefix(userID string) string {
	return "avatars/" + userID + "/"
}

// AvatarService hands out presigned S3 PUT URLs for profile pictures.
type AvatarService struct {
	config *sc.Config
}

func NewAvatarService(config *sc.Config) *AvatarService {
	return &AvatarService{config: config}
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL returns a fresh object key under the user's prefix and a URL
// the client can PUT the image to. Only image/* content types are allowed.
func (s *AvatarService) UploadURL(ctx context.Context, userID, contentType string) (string, string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", "", fmt.Errorf("%w: avatar must be an image", common.ErrorValidation)
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	key := AvatarKeyPrefix(userID) + uuid.NewString()
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mediaType),
	}, s3.WithPresignExpires(AvatarURLValidity))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return key, req.URL, nil
}
