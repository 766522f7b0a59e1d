package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	pages [][]string
	calls int
	err   error
}

func (f *fakeLister) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++

	out := &s3.ListObjectsV2Output{}
	for _, key := range page {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if f.calls < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

type fakePresigner struct {
	gotBucket, gotKey string
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.gotBucket = aws.ToString(in.Bucket)
	f.gotKey = aws.ToString(in.Key)
	return &v4.PresignedHTTPRequest{URL: "https://assets.example/" + f.gotKey + "?sig=1"}, nil
}

func TestS3CatalogKeysPaginates(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"members/b.gif", "members/"}, {"members/a.gif"}}}
	catalog := newS3Catalog("bucket", "members/", lister, &fakePresigner{})

	keys, err := catalog.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"members/a.gif", "members/b.gif"}, keys)
	assert.Equal(t, 2, lister.calls)
}

func TestS3CatalogURL(t *testing.T) {
	p := &fakePresigner{}
	catalog := newS3Catalog("bucket", "members/", &fakeLister{}, p)

	url, err := catalog.URL(context.Background(), "members/a.gif")
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example/members/a.gif?sig=1", url)
	assert.Equal(t, "bucket", p.gotBucket)
}

func TestS3CatalogListError(t *testing.T) {
	catalog := newS3Catalog("bucket", "", &fakeLister{err: errors.New("denied")}, &fakePresigner{})

	_, err := catalog.Keys(context.Background())
	assert.ErrorContains(t, err, "denied")
}

func TestNewS3Catalog(t *testing.T) {
	catalog, err := NewS3Catalog(context.Background(), S3Config{
		Bucket:    "vault",
		Prefix:    "members/",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "admin",
		SecretKey: "secretpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "vault", catalog.bucket)

	url, err := catalog.URL(context.Background(), "members/a.gif")
	require.NoError(t, err)
	assert.Contains(t, url, "http://127.0.0.1:9000/vault/members/a.gif")
}
