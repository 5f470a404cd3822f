package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const s3PresignDuration = 15 * time.Minute

type S3Config struct {
	Bucket        string
	Prefix        string // key prefix inside the S3 bucket
	Region        string
	Endpoint      string // optional, for S3 compatible services
	AccessKey     string
	SecretKey     string
	SSEEncryption string
}

// S3Storage keeps every site bucket under `<Prefix>/<bucket>/` of one S3 bucket.
// Objects are private, the public URL goes through this server which
// redirects to a presigned URL.
type S3Storage struct {
	Config     S3Config
	PublicBase string
	s3Client   *s3.S3
}

func NewS3Storage(cfg S3Config, publicBase string) (*S3Storage, error) {
	awsConfig := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.AccessKey != "" {
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""))
	}
	if cfg.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		Config:     cfg,
		PublicBase: publicBase,
		s3Client:   s3.New(sess),
	}, nil
}

func (s *S3Storage) getRemotePath(bucket, path string) string {
	key := bucket + "/" + strings.TrimLeft(path, "/")
	if s.Config.Prefix == "" {
		return key
	}
	return strings.Trim(s.Config.Prefix, "/") + "/" + key
}

func (s *S3Storage) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	key := s.getRemotePath(bucket, path)
	// Same semantics as the hosted store: never overwrite
	_, err := s.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: &s.Config.Bucket,
		Key:    aws.String(key),
	})
	if err == nil {
		return "", fmt.Errorf("object %s/%s already exists", bucket, path)
	}
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	input := s3manager.UploadInput{
		Bucket:       &s.Config.Bucket,
		Key:          aws.String(key),
		ContentType:  &contentType,
		CacheControl: aws.String("max-age=3600"),
		Body:         body,
	}
	if s.Config.SSEEncryption != "" {
		input.ServerSideEncryption = &s.Config.SSEEncryption
	}
	if _, err = uploader.UploadWithContext(ctx, &input); err != nil {
		return "", err
	}
	return path, nil
}

func (s *S3Storage) PublicURL(bucket, path string) string {
	return PublicURL(s.PublicBase, bucket, path)
}

func (s *S3Storage) Remove(ctx context.Context, bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	objects := make([]*s3.ObjectIdentifier, 0, len(paths))
	for _, path := range paths {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(s.getRemotePath(bucket, path))})
	}
	out, err := s.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: &s.Config.Bucket,
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		for _, e := range out.Errors {
			log.Printf("S3 delete %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message))
		}
		return fmt.Errorf("%d of %d objects not deleted", len(out.Errors), len(paths))
	}
	return nil
}

// Serve redirects to a short lived presigned URL
func (s *S3Storage) Serve(bucket, path string, request *http.Request, writer http.ResponseWriter) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: &s.Config.Bucket,
		Key:    aws.String(s.getRemotePath(bucket, path)),
	})
	url, err := req.Presign(s3PresignDuration)
	if err != nil {
		log.Printf("S3 presign %s/%s: %v", bucket, path, err)
		http.Error(writer, "asset unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(writer, request, url, http.StatusFound)
}
