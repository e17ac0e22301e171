// Package s3 provides an S3-compatible storage backend.
//
// Folders are represented by zero-byte marker objects whose key ends in "/",
// so that empty folders survive and parent existence can be checked with a
// single HEAD request. Directory moves are copy-then-delete over the prefix.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// Config holds configuration for the S3 backend.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" yaml:"bucket" validate:"required"`

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// KeyPrefix is prepended to every key. A trailing "/" is added if missing.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the SDK default credential chain is used.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// MaxRetries is the maximum number of attempts for transient errors.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`

	// ForcePathStyle forces path-style addressing (required for Localstack/MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// Backend is a storage.Backend over an S3 bucket.
type Backend struct {
	client *s3.Client
	bucket string
	prefix string
	mu     sync.RWMutex
	closed bool
}

// New creates a backend with an existing client.
func New(client *s3.Client, cfg Config) *Backend {
	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Backend{client: client, bucket: cfg.Bucket, prefix: prefix}
}

// NewFromConfig builds an S3 client from cfg and returns a backend using it.
func NewFromConfig(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	logger.Debug("s3 backend configured", logger.KeyBucket, cfg.Bucket, "endpoint", cfg.Endpoint)
	return New(client, cfg), nil
}

func (b *Backend) Type() string { return "s3" }

func (b *Backend) fileKey(p string) string { return b.prefix + p }
func (b *Backend) dirKey(p string) string { return b.prefix + p + "/" }

func (b *Backend) check(ctx context.Context, op, p string) (string, error) {
	rel, err := storage.CleanPath(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", storage.Wrap(op, rel, err)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return "", storage.Wrap(op, rel, storage.ErrClosed)
	}
	return rel, nil
}

func (b *Backend) CreateDir(ctx context.Context, p string) error {
	rel, err := b.check(ctx, "create_dir", p)
	if err != nil {
		return err
	}
	if err := b.requireParent(ctx, "create_dir", rel); err != nil {
		return err
	}
	if err := b.requireVacant(ctx, "create_dir", rel); err != nil {
		return err
	}
	return b.put(ctx, "create_dir", rel, b.dirKey(rel), nil, "application/x-directory")
}

func (b *Backend) WriteFile(ctx context.Context, p string, content []byte) error {
	rel, err := b.check(ctx, "write_file", p)
	if err != nil {
		return err
	}
	if err := b.requireParent(ctx, "write_file", rel); err != nil {
		return err
	}
	if err := b.requireVacant(ctx, "write_file", rel); err != nil {
		return err
	}
	return b.put(ctx, "write_file", rel, b.fileKey(rel), content, mimetype.Detect(content).String())
}

// put creates key only if it does not exist yet.
func (b *Backend) put(ctx context.Context, op, rel, key string, content []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return treeerrors.NewDestinationExistsError(rel)
		}
		return storage.Wrap(op, rel, err)
	}
	return nil
}

func (b *Backend) RemoveFile(ctx context.Context, p string) error {
	rel, err := b.check(ctx, "remove_file", p)
	if err != nil {
		return err
	}
	ok, err := b.headFile(ctx, rel)
	if err != nil {
		return storage.Wrap("remove_file", rel, err)
	}
	if !ok {
		return treeerrors.NewPathNotFoundError(rel, nil)
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fileKey(rel)),
	})
	return storage.Wrap("remove_file", rel, err)
}

func (b *Backend) RemoveDirTree(ctx context.Context, p string) error {
	rel, err := b.check(ctx, "remove_dir_tree", p)
	if err != nil {
		return err
	}
	keys, err := b.listKeys(ctx, b.dirKey(rel))
	if err != nil {
		return storage.Wrap("remove_dir_tree", rel, err)
	}
	if len(keys) == 0 {
		return treeerrors.NewPathNotFoundError(rel, nil)
	}
	return storage.Wrap("remove_dir_tree", rel, b.deleteKeys(ctx, keys))
}

func (b *Backend) MoveOrRename(ctx context.Context, oldPath, newPath string) error {
	newRel, err := storage.CleanPath(newPath)
	if err != nil {
		return err
	}
	oldRel, err := b.check(ctx, "move", oldPath)
	if err != nil {
		return err
	}
	if oldRel == newRel {
		return treeerrors.NewDestinationExistsError(newRel)
	}

	isFile, err := b.headFile(ctx, oldRel)
	if err != nil {
		return storage.Wrap("move", oldRel, err)
	}
	var srcKeys []string
	if !isFile {
		srcKeys, err = b.listKeys(ctx, b.dirKey(oldRel))
		if err != nil {
			return storage.Wrap("move", oldRel, err)
		}
		if len(srcKeys) == 0 {
			return treeerrors.NewPathNotFoundError(oldRel, nil)
		}
		if strings.HasPrefix(newRel+"/", oldRel+"/") {
			return treeerrors.NewStorageError("move", oldRel, errors.New("cannot move a directory into itself"))
		}
	}

	if err := b.requireParent(ctx, "move", newRel); err != nil {
		return err
	}
	if err := b.requireVacant(ctx, "move", newRel); err != nil {
		return err
	}

	if isFile {
		srcKey, dstKey := b.fileKey(oldRel), b.fileKey(newRel)
		if err := b.copy(ctx, srcKey, dstKey); err != nil {
			return storage.Wrap("move", oldRel, err)
		}
		_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(srcKey),
		})
		if err != nil {
			b.undoMove(ctx, newRel, []string{srcKey}, []string{dstKey})
			return storage.Wrap("move", oldRel, err)
		}
		return nil
	}

	from, to := b.dirKey(oldRel), b.dirKey(newRel)
	copied := make([]string, 0, len(srcKeys))
	for _, k := range srcKeys {
		dst := to + strings.TrimPrefix(k, from)
		if err := b.copy(ctx, k, dst); err != nil {
			// Undo partial copies so the destination stays vacant.
			if derr := b.deleteKeys(context.WithoutCancel(ctx), copied); derr != nil {
				logger.Warn("s3 move cleanup failed", logger.KeyPath, newRel, logger.Err(derr))
			}
			return storage.Wrap("move", oldRel, err)
		}
		copied = append(copied, dst)
	}
	if err := b.deleteKeys(ctx, srcKeys); err != nil {
		b.undoMove(ctx, newRel, srcKeys, copied)
		return storage.Wrap("move", oldRel, err)
	}
	return nil
}

// undoMove returns a move whose source delete failed to its starting state.
// srcKeys[i] was copied to dstKeys[i]; any source key the failed delete did
// remove is copied back before the destination keys are dropped.
func (b *Backend) undoMove(ctx context.Context, newRel string, srcKeys, dstKeys []string) {
	ctx = context.WithoutCancel(ctx)
	for i, src := range srcKeys {
		_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(src),
		})
		if err == nil {
			continue
		}
		if !isNotFoundError(err) {
			logger.Warn("s3 move rollback: source check failed", logger.KeyPath, newRel, logger.Err(err))
			return
		}
		if err := b.copy(ctx, dstKeys[i], src); err != nil {
			// Keep the destination: it is now the only copy.
			logger.Warn("s3 move rollback: restore failed", logger.KeyPath, newRel, logger.Err(err))
			return
		}
	}
	if err := b.deleteKeys(ctx, dstKeys); err != nil {
		logger.Warn("s3 move rollback: cleanup failed", logger.KeyPath, newRel, logger.Err(err))
	}
}

func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	rel, err := b.check(ctx, "exists", p)
	if err != nil {
		return false, err
	}
	ok, err := b.occupied(ctx, rel)
	if err != nil {
		return false, storage.Wrap("exists", rel, err)
	}
	return ok, nil
}

func (b *Backend) Stat(ctx context.Context, p string) (*storage.ObjectInfo, error) {
	rel, err := b.check(ctx, "stat", p)
	if err != nil {
		return nil, err
	}

	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fileKey(rel)),
	})
	if err == nil {
		info := &storage.ObjectInfo{Path: rel, Size: aws.ToInt64(out.ContentLength)}
		if out.LastModified != nil {
			info.ModTime = *out.LastModified
		}
		return info, nil
	}
	if !isNotFoundError(err) {
		return nil, storage.Wrap("stat", rel, err)
	}

	keys, err := b.listKeysLimit(ctx, b.dirKey(rel), 1)
	if err != nil {
		return nil, storage.Wrap("stat", rel, err)
	}
	if len(keys) == 0 {
		return nil, treeerrors.NewPathNotFoundError(rel, nil)
	}
	return &storage.ObjectInfo{Path: rel, IsDir: true}, nil
}

// Healthcheck performs a HeadBucket call to check connectivity and permissions.
func (b *Backend) Healthcheck(ctx context.Context) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return storage.Wrap("healthcheck", "", storage.ErrClosed)
	}

	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	return storage.Wrap("healthcheck", "", err)
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// requireParent fails with NotFound when rel's parent directory is missing.
func (b *Backend) requireParent(ctx context.Context, op, rel string) error {
	parent := path.Dir(rel)
	if parent == "." {
		return nil
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.dirKey(parent)),
	})
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return treeerrors.NewPathNotFoundError(parent, nil)
	}
	return storage.Wrap(op, rel, err)
}

// requireVacant fails with DestinationExists when anything occupies rel.
func (b *Backend) requireVacant(ctx context.Context, op, rel string) error {
	ok, err := b.occupied(ctx, rel)
	if err != nil {
		return storage.Wrap(op, rel, err)
	}
	if ok {
		return treeerrors.NewDestinationExistsError(rel)
	}
	return nil
}

func (b *Backend) occupied(ctx context.Context, rel string) (bool, error) {
	ok, err := b.headFile(ctx, rel)
	if err != nil || ok {
		return ok, err
	}
	keys, err := b.listKeysLimit(ctx, b.dirKey(rel), 1)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

func (b *Backend) headFile(ctx context.Context, rel string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fileKey(rel)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (b *Backend) copy(ctx context.Context, srcKey, dstKey string) error {
	src := b.bucket + "/" + (&url.URL{Path: srcKey}).EscapedPath()
	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(src),
	})
	return err
}

func (b *Backend) listKeys(ctx context.Context, prefix string) ([]string, error) {
	return b.listKeysLimit(ctx, prefix, 0)
}

// listKeysLimit lists keys under prefix; limit 0 means all.
func (b *Backend) listKeysLimit(ctx context.Context, prefix string, limit int32) ([]string, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(limit)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if limit > 0 && len(keys) >= int(limit) {
			break
		}
	}
	return keys, nil
}

// deleteKeys removes keys in batches of at most 1000.
func (b *Backend) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}
		out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("s3 delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("s3 delete objects: %d failed, first %s: %s",
				len(out.Errors), aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}
	return nil
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "NoSuchKey") || strings.Contains(s, "NotFound") || strings.Contains(s, "StatusCode: 404")
}

func isPreconditionFailed(err error) bool {
	s := err.Error()
	return strings.Contains(s, "PreconditionFailed") || strings.Contains(s, "StatusCode: 412")
}

var _ storage.Backend = (*Backend)(nil)
