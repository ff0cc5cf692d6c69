// Package storage keeps payment-proof files in a gocloud.dev bucket.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"mlm/config"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/service"
	"mlm/internal/errors"
	"mlm/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets for single-node deployments
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets for development and tests
)

const (
	defaultBucketURL     = "mem://"
	defaultMaxUploadSize = 5 << 20
	proofPrefix          = "proofs"
)

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Params defines the dependencies of the proof storage.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

type blobProofStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
	maxSize       int64
}

// New opens the configured bucket and closes it on shutdown.
func New(params Params) (service.ProofStorage, error) {
	bucketURL := defaultBucketURL
	publicBaseURL := ""
	maxSize := int64(defaultMaxUploadSize)
	if cfg := params.Config.Storage; cfg != nil {
		if cfg.BucketURL != "" {
			bucketURL = cfg.BucketURL
		}
		publicBaseURL = cfg.PublicBaseURL
		if cfg.MaxUploadSize > 0 {
			maxSize = cfg.MaxUploadSize
		}
	}

	bucket, err := blob.OpenBucket(params.Ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}
	if publicBaseURL == "" {
		publicBaseURL = bucketURL
	}

	params.Logger.Info("Payment proof storage ready", slog.String("bucket", bucketURL))

	storage := NewBlobProofStorage(bucket, publicBaseURL, maxSize)
	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return storage.Close()
		},
	})

	return storage, nil
}

// NewBlobProofStorage wraps an already opened bucket.
func NewBlobProofStorage(bucket *blob.Bucket, publicBaseURL string, maxSize int64) service.ProofStorage {
	return &blobProofStorage{
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		maxSize:       maxSize,
	}
}

// Upload validates size and content type, then writes proofs/{user}/{uuid}{ext}.
func (s *blobProofStorage) Upload(ctx context.Context, upload *service.ProofUpload) (string, error) {
	if len(upload.Data) == 0 {
		return "", domainerrors.ErrPaymentProofRequired.WrapMessage("empty upload")
	}
	if int64(len(upload.Data)) > s.maxSize {
		return "", domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("payment proof exceeds %s", util.FormatBytes(s.maxSize)))
	}

	contentType := detectContentType(upload)
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unsupported payment proof type %q", contentType))
	}

	key := path.Join(proofPrefix, upload.UserID.String(), uuid.NewString()+ext)
	err := s.bucket.WriteAll(ctx, key, upload.Data, &blob.WriterOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"owner":  upload.UserID.String(),
			"sha256": util.Checksum(upload.Data),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store payment proof")
	}

	if strings.HasSuffix(s.publicBaseURL, "/") {
		return s.publicBaseURL + key, nil
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *blobProofStorage) Close() error {
	return errors.WithStack(s.bucket.Close())
}

// detectContentType sniffs the payload. A declared type is only a fallback for
// payloads the sniffer cannot classify.
func detectContentType(upload *service.ProofUpload) string {
	sniffed := mediaType(http.DetectContentType(upload.Data))
	if sniffed != "application/octet-stream" {
		return sniffed
	}

	return mediaType(upload.ContentType)
}

func mediaType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	return contentType
}
