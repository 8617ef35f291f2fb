package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const objectSuffix = ".json"

type s3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store implements ItemStore as one JSON object per item under a key prefix.
// Object keys are the path-escaped item name, so any ingredient line is a valid key.
type S3Store struct {
	bucket string
	prefix string
	s3     s3API
}

func NewS3Store(s3Client s3API, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{
		bucket: bucket,
		prefix: prefix,
		s3:     s3Client,
	}
}

func (s *S3Store) objectKey(name string) string {
	return s.prefix + url.PathEscape(name) + objectSuffix
}

func (s *S3Store) itemName(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) || !strings.HasSuffix(key, objectSuffix) {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), objectSuffix))
	if err != nil {
		return "", false
	}
	return name, true
}

func (s *S3Store) Get(ctx context.Context, name string) (Record, bool, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("failed to get item %q from S3: %w", name, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read item %q from S3: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to parse item %q: %w", name, err)
	}
	return rec, true, nil
}

func (s *S3Store) List(ctx context.Context) ([]Item, error) {
	p := s3.NewListObjectsV2Paginator(s.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	items := make([]Item, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list items in S3: %w", err)
		}
		for _, obj := range page.Contents {
			name, ok := s.itemName(aws.ToString(obj.Key))
			if !ok {
				slog.Warn("STORE: skipping foreign object", "key", aws.ToString(obj.Key))
				continue
			}
			rec, found, err := s.Get(ctx, name)
			if err != nil {
				return nil, err
			}
			if !found {
				// deleted between list and get
				continue
			}
			items = append(items, Item{Name: name, Quantity: rec.Quantity, IsImported: rec.IsImported})
		}
	}

	SortItems(items)
	return items, nil
}

func (s *S3Store) Put(ctx context.Context, name string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal item %q: %w", name, err)
	}
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(name)),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put item %q to S3: %w", name, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %q from S3: %w", name, err)
	}
	return nil
}
