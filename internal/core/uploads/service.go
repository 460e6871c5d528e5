/*
Package uploads issues short-lived pre-signed PUT URLs for an S3-compatible
object store.

The server never proxies file bytes: the client uploads directly against the
signed URL and then references the resulting CDN URL in a work submission.
Requests are gated by a size ceiling and an extension allowlist before any
signing happens.
*/
package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/platform/apperr"
	"github.com/atelierhq/atelier/internal/platform/constants"
	"github.com/atelierhq/atelier/internal/platform/sec"
	"github.com/atelierhq/atelier/internal/platform/validate"
	"github.com/atelierhq/atelier/pkg/pointer"
	"github.com/atelierhq/atelier/pkg/slug"
)

// allowedExtensions is the closed set of file types a pre-signed URL may be
// issued for: images and the audio formats the item classifier recognizes.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
}

// Presigner is the subset of the S3 presign client the service needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Request describes the object a caller wants to upload. ContentType is
// optional and defaults to octet-stream.
type Request struct {
	Filename      string  `json:"filename"`
	ContentLength int64   `json:"contentLength"`
	ContentType   *string `json:"contentType,omitempty"`
}

// Grant is an issued pre-signed upload. PublicURL is where the object will
// be served from once the client's PUT completes.
type Grant struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// Service validates upload requests and signs them against the object store.
type Service struct {
	presigner  Presigner
	bucket     string
	cdnBaseURL string
	logger     *slog.Logger
}

func NewService(presigner Presigner, bucket, cdnBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		presigner:  presigner,
		bucket:     bucket,
		cdnBaseURL: cdnBaseURL,
		logger:     logger,
	}
}

// Issue validates request and returns a pre-signed PUT grant scoped to the
// caller. Artists and above only.
func (service *Service) Issue(ctx context.Context, request *Request, caller *sec.AuthClaims) (*Grant, error) {
	if caller == nil {
		return nil, apperr.Forbidden("Authentication required")
	}
	if !sec.UserRole(caller.Role).AtLeast(sec.RoleArtist) {
		return nil, apperr.Forbidden("Uploads require an artist profile")
	}

	if err := validateRequest(request); err != nil {
		return nil, err
	}

	key := objectKey(caller.UserID, request.Filename)

	signed, err := service.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(service.bucket),
		Key:           aws.String(key),
		ContentLength: aws.Int64(request.ContentLength),
		ContentType:   aws.String(pointer.Fallback(request.ContentType, "application/octet-stream")),
	}, func(options *s3.PresignOptions) {
		options.Expires = constants.UploadURLTTL
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("uploads: presign %q: %w", key, err))
	}

	service.logger.Info("upload_url_issued",
		slog.String("key", key),
		slog.String("artist_id", caller.UserID),
		slog.Int64("content_length", request.ContentLength),
	)

	return &Grant{
		UploadURL: signed.URL,
		Key:       key,
		PublicURL: service.cdnBaseURL + key,
	}, nil
}

// objectKey builds the store key: a per-artist prefix, a random component
// against enumeration and overwrites, and the slugged original base name so
// the asset stays recognizable in bucket listings.
func objectKey(artistID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.From(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("u/%s/%s-%s%s", artistID, uuid.NewString(), base, ext)
}

func validateRequest(request *Request) error {
	v := &validate.Validator{}

	v.Required("filename", request.Filename)
	v.Custom("contentLength", request.ContentLength <= 0, "Content length is required")
	v.Custom("contentLength", request.ContentLength > constants.MaxUploadBytes,
		fmt.Sprintf("Uploads are limited to %d bytes", constants.MaxUploadBytes))

	ext := strings.ToLower(path.Ext(request.Filename))
	v.Custom("filename", request.Filename != "" && !allowedExtensions[ext],
		"File type is not allowed")

	return v.Err()
}
