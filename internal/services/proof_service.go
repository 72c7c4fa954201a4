package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const proofURLExpiry = 24 * time.Hour

// ProofService stores proof-of-condition photos captured at borrow and return
// time and hands out short-lived URLs for viewing them.
type ProofService interface {
	UploadProof(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error)
	ProofURL(objectName string) (string, error)
	DeleteProof(ctx context.Context, objectName string) error
	EnsureBucket(ctx context.Context) error
	Healthy(ctx context.Context) bool
}

type proofService struct {
	client *minio.Client
	bucket string
}

func NewProofService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (ProofService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &proofService{client: client, bucket: bucket}, nil
}

// UploadProof stores the image under a generated object name and returns it.
func (p *proofService) UploadProof(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectName := fmt.Sprintf("proof-%s", uuid.NewString())
	_, err := p.client.PutObject(ctx, p.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload proof image: %w", err)
	}
	return objectName, nil
}

func (p *proofService) ProofURL(objectName string) (string, error) {
	url, err := p.client.PresignedGetObject(context.Background(), p.bucket, objectName, proofURLExpiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (p *proofService) DeleteProof(ctx context.Context, objectName string) error {
	return p.client.RemoveObject(ctx, p.bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *proofService) EnsureBucket(ctx context.Context) error {
	found, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !found {
		return p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (p *proofService) Healthy(ctx context.Context) bool {
	_, err := p.client.BucketExists(ctx, p.bucket)
	return err == nil
}
