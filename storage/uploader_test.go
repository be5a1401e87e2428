package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawchain/lawchain-api/config"
)

type stubObjectStore struct {
	putFn    func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	headFn   func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	deleteFn func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	listFn   func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)

	putCalls int
}

func (s *stubObjectStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.putCalls++
	if s.putFn == nil {
		return &s3.PutObjectOutput{}, nil
	}
	return s.putFn(ctx, params, optFns...)
}

func (s *stubObjectStore) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if s.headFn == nil {
		return &s3.HeadObjectOutput{Metadata: map[string]string{"cid": "bafytestcid"}}, nil
	}
	return s.headFn(ctx, params, optFns...)
}

func (s *stubObjectStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if s.deleteFn == nil {
		return &s3.DeleteObjectOutput{}, nil
	}
	return s.deleteFn(ctx, params, optFns...)
}

func (s *stubObjectStore) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if s.listFn == nil {
		return &s3.ListObjectsV2Output{}, nil
	}
	return s.listFn(ctx, params, optFns...)
}

func testConfig() *config.Config {
	return &config.Config{
		FilebaseBucket: "lawchain-docs",
		IPFSGatewayURL: "https://ipfs.filebase.io/ipfs",
		MaxUploadBytes: config.DefaultMaxUploadBytes,
	}
}

// formFile builds a real multipart file the way a handler would hand it over.
func formFile(t *testing.T, name, contents string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func TestUpload_MissingOwner(t *testing.T) {
	store := &stubObjectStore{}
	u := NewUploader(store, testConfig())

	file, header := formFile(t, "contract.pdf", "pdf bytes")
	_, err := u.Upload(context.TODO(), file, header, "")

	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.Zero(t, store.putCalls)
}

func TestUpload_TooLargeNeverReachesUpstream(t *testing.T) {
	store := &stubObjectStore{}
	conf := testConfig()
	u := NewUploader(store, conf)

	// 60 MiB against the 50 MiB ceiling. The size comes from the parsed
	// header, so nothing needs to be buffered to exercise the check.
	header := &multipart.FileHeader{Filename: "dump.bin", Size: 60 << 20}
	_, err := u.Upload(context.TODO(), nil, header, "0xabc")

	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, store.putCalls)
}

func TestUpload_Success(t *testing.T) {
	var putKey string
	store := &stubObjectStore{
		putFn: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			putKey = aws.ToString(params.Key)
			assert.Equal(t, "lawchain-docs", aws.ToString(params.Bucket))
			return &s3.PutObjectOutput{}, nil
		},
		headFn: func(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			assert.Equal(t, putKey, aws.ToString(params.Key))
			return &s3.HeadObjectOutput{Metadata: map[string]string{"cid": "bafybeigdyrzt"}}, nil
		},
	}
	u := NewUploader(store, testConfig())

	file, header := formFile(t, "contract.pdf", "pdf bytes")
	res, err := u.Upload(context.TODO(), file, header, "0xabc")

	require.NoError(t, err)
	assert.Equal(t, "bafybeigdyrzt", res.CID)
	assert.Equal(t, "https://ipfs.filebase.io/ipfs/bafybeigdyrzt", res.PublicURL)
	assert.True(t, strings.HasPrefix(res.Key, "uploads/0xabc/"), "key %q", res.Key)
	assert.True(t, strings.HasSuffix(res.Key, "-contract.pdf"), "key %q", res.Key)
	assert.Equal(t, header.Size, res.Size)
}

func TestUpload_NoCIDMetadata(t *testing.T) {
	store := &stubObjectStore{
		headFn: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return &s3.HeadObjectOutput{Metadata: map[string]string{}}, nil
		},
	}
	u := NewUploader(store, testConfig())

	file, header := formFile(t, "contract.pdf", "pdf bytes")
	_, err := u.Upload(context.TODO(), file, header, "0xabc")

	assert.ErrorIs(t, err, ErrStorage)
}

func TestUpload_UpstreamFailure(t *testing.T) {
	store := &stubObjectStore{
		putFn: func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, assert.AnError
		},
	}
	u := NewUploader(store, testConfig())

	file, header := formFile(t, "contract.pdf", "pdf bytes")
	_, err := u.Upload(context.TODO(), file, header, "0xabc")

	assert.ErrorIs(t, err, ErrStorage)
}

func TestDelete(t *testing.T) {
	var deleted string
	store := &stubObjectStore{
		deleteFn: func(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			deleted = aws.ToString(params.Key)
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	u := NewUploader(store, testConfig())

	err := u.Delete(context.TODO(), "uploads/0xabc/some-key")
	require.NoError(t, err)
	assert.Equal(t, "uploads/0xabc/some-key", deleted)
}

func TestListUploads_Paginates(t *testing.T) {
	now := time.Now()
	pages := 0
	store := &stubObjectStore{
		listFn: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "uploads/", aws.ToString(params.Prefix))
			pages++
			if pages == 1 {
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("uploads/0xabc/a-one.pdf"), LastModified: aws.Time(now)},
					},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("next"),
				}, nil
			}
			assert.Equal(t, "next", aws.ToString(params.ContinuationToken))
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("uploads/0xdef/b-two.pdf"), LastModified: aws.Time(now)},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	u := NewUploader(store, testConfig())

	objects, err := u.ListUploads(context.TODO())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "uploads/0xabc/a-one.pdf", objects[0].Key)
	assert.Equal(t, "uploads/0xdef/b-two.pdf", objects[1].Key)
	assert.Equal(t, 2, pages)
}
