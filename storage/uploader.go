package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/config"
)

// Upload failure taxonomy.
var (
	// ErrMissingOwner is returned when no owner address accompanies the upload.
	ErrMissingOwner = errors.New("missing owner address")

	// ErrTooLarge is returned before any byte is sent upstream.
	ErrTooLarge = errors.New("file exceeds upload ceiling")

	// ErrStorage wraps upstream object store failures.
	ErrStorage = errors.New("object store error")
)

// ObjectStoreAPI is the slice of the S3 client the uploader uses, an
// interface so tests can stub the upstream store.
type ObjectStoreAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// UploadResult carries the outcome of a successful upload.
type UploadResult struct {
	CID       string `json:"cid"`
	PublicURL string `json:"url"`
	Key       string `json:"key"`
	Size      int64  `json:"size"`
}

// ObjectInfo describes a stored upload, used by the orphan janitor.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

const uploadPrefix = "uploads/"

// Uploader pushes case documents into the Filebase bucket. Filebase pins
// every object to IPFS and reports the resulting CID in the object's
// metadata, which Filebase populates server-side after the put.
type Uploader struct {
	client     ObjectStoreAPI
	bucket     string
	gatewayURL string
	maxBytes   int64
}

// NewClient builds the S3 client against the Filebase endpoint.
func NewClient(ctx context.Context, conf *config.Config) (ObjectStoreAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.FilebaseKey, conf.FilebaseSecret, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.FilebaseEndpoint)
		o.UsePathStyle = true
	})
	return client, nil
}

// NewUploader wires an uploader over the object store client.
func NewUploader(client ObjectStoreAPI, conf *config.Config) *Uploader {
	return &Uploader{
		client:     client,
		bucket:     conf.FilebaseBucket,
		gatewayURL: conf.IPFSGatewayURL,
		maxBytes:   conf.MaxUploadBytes,
	}
}

// Upload stores the file under a key namespaced by the owner address and
// returns the pinned CID. The size ceiling is enforced before anything is
// sent upstream; multipart temp buffers are the caller's to reclaim via
// the request's RemoveAll on every path.
func (u *Uploader) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, owner string) (*UploadResult, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	if header.Size > u.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes over %d ceiling", ErrTooLarge, header.Size, u.maxBytes)
	}

	key := fmt.Sprintf("%s%s/%s-%s", uploadPrefix, owner, uuid.New().String(), filepath.Base(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(header.Size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", ErrStorage, key, err)
	}

	cid, err := u.CIDForKey(ctx, key)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("document uploaded",
		"key", key,
		"cid", cid,
		"owner", owner,
		"size", header.Size,
	)
	return &UploadResult{
		CID:       cid,
		PublicURL: u.GatewayURL(cid),
		Key:       key,
		Size:      header.Size,
	}, nil
}

// CIDForKey reads the IPFS CID Filebase attaches to a stored object.
func (u *Uploader) CIDForKey(ctx context.Context, key string) (string, error) {
	head, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: head %s: %v", ErrStorage, key, err)
	}
	cid, ok := head.Metadata["cid"]
	if !ok || cid == "" {
		return "", fmt.Errorf("%w: no cid metadata on %s", ErrStorage, key)
	}
	return cid, nil
}

// Delete removes a stored object. Used as the compensating action when
// chain recording fails after a successful upload, and by the janitor.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}
	return nil
}

// ListUploads walks the uploads prefix and returns every stored object.
func (u *Uploader) ListUploads(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	var token *string
	for {
		out, err := u.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(u.bucket),
			Prefix:            aws.String(uploadPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list uploads: %v", ErrStorage, err)
		}
		for _, obj := range out.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return objects, nil
}

// GatewayURL builds the public IPFS gateway URL for a CID.
func (u *Uploader) GatewayURL(cid string) string {
	return u.gatewayURL + "/" + cid
}
