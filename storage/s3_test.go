package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket implementing s3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeS3()
	store := NewS3Store(bucket, "test-bucket", "inventory")

	_, ok, err := store.Get(ctx, "egg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "1 cup flour", Record{Quantity: 1, IsImported: true}))
	require.NoError(t, store.Put(ctx, "egg", Record{Quantity: 6}))
	bucket.objects["readme.txt"] = []byte("not an item")

	assert.Contains(t, bucket.objects, "inventory/1%20cup%20flour.json")

	rec, ok, err := store.Get(ctx, "1 cup flour")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{Quantity: 1, IsImported: true}, rec)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "1 cup flour", Quantity: 1, IsImported: true},
		{Name: "egg", Quantity: 6},
	}, items)

	require.NoError(t, store.Delete(ctx, "egg"))
	items, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestS3Store_PutError(t *testing.T) {
	bucket := newFakeS3()
	bucket.putErr = errors.New("access denied")
	store := NewS3Store(bucket, "test-bucket", "inventory/")

	err := store.Put(context.Background(), "egg", Record{Quantity: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, bucket.putErr)
}
