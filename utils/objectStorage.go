package utils

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Kariqs/goutam-store/realtime"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is satisfied by *manager.Uploader.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type EventPublisher interface {
	Publish(evt realtime.Event)
}

// UploadProgress is published on the uploads topic while a file is sent.
type UploadProgress struct {
	Key     string `json:"key"`
	Percent int    `json:"percent"`
	URL     string `json:"url,omitempty"`
}

// ImageStore puts user and product images in an S3 bucket.
type ImageStore struct {
	uploader Uploader
	bucket   string
	events   EventPublisher
	now      func() time.Time
}

// NewS3ImageStore builds an uploader from the default AWS credential chain.
func NewS3ImageStore(ctx context.Context, bucket string, events EventPublisher) (*ImageStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return NewImageStore(manager.NewUploader(client), bucket, events), nil
}

func NewImageStore(uploader Uploader, bucket string, events EventPublisher) *ImageStore {
	return &ImageStore{uploader: uploader, bucket: bucket, events: events, now: time.Now}
}

func (s *ImageStore) Configured() bool { return s != nil && s.uploader != nil && s.bucket != "" }

// UserImageKey is where a user's own uploads live.
func (s *ImageStore) UserImageKey(userID, filename string) string {
	return fmt.Sprintf("users/%s/%d-%s", userID, s.now().UnixMilli(), cleanFilename(filename))
}

func (s *ImageStore) ProductImageKey(filename string) string {
	return fmt.Sprintf("products/%s-%s", s.now().Format("20060102150405"), cleanFilename(filename))
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// Upload stores body under key and returns its public URL. When size is known
// progress from 0 to 100 is published for key.
func (s *ImageStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("object storage is not configured")
	}
	reader := &progressReader{r: body, total: size, report: func(pct int) { s.publish(key, pct, "") }}
	s.publish(key, 0, "")

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	s.publish(key, 100, result.Location)
	return result.Location, nil
}

func (s *ImageStore) publish(key string, pct int, url string) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{
		Topic: realtime.TopicUploads,
		Kind:  realtime.KindModified,
		ID:    key,
		Data:  UploadProgress{Key: key, Percent: pct, URL: url},
	})
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			// 100 is reported once the upload is acknowledged
			pct = 99
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
