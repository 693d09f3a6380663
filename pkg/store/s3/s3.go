// Package s3 implements a backing store on Amazon S3 or any S3-compatible
// service (MinIO, Localstack).
//
// Layout under the configured key prefix:
//
//	<prefix>nodes<path>        node record (JSON), e.g. nodes/alice/file.txt
//	<prefix>content/<id>       content object, keyed by content ID
//
// Keeping node records keyed by path makes one-level listings a single
// ListObjectsV2 call with a delimiter, while content objects keyed by
// content ID let MoveNode relocate a record without copying bytes.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// defaultPartSize is the multipart upload part size. S3 requires at least
// 5 MiB per part (except the last); 10 MiB halves the part count for large
// uploads at a modest memory cost per open writer.
const (
	defaultPartSize = 10 * 1024 * 1024
	minPartSize     = 5 * 1024 * 1024
)

// Config configures the S3 store.
type Config struct {
	// Client is a constructed S3 client (see pkg/config for the factory
	// that builds one from configuration).
	Client *s3.Client

	// Bucket is the bucket holding node records and content objects.
	Bucket string

	// KeyPrefix namespaces all keys, e.g. "ftpfs/". May be empty.
	KeyPrefix string

	// PartSize overrides the multipart part size. Values below the S3
	// minimum are raised to it; zero selects the default.
	PartSize int64
}

// S3Store implements store.Store on an S3 bucket.
//
// Atomicity caveat: MoveNode is copy-then-delete, so a crash between the
// two calls can leave the record at both paths. The adapter's contract
// explicitly defers move atomicity to the store, and this store cannot do
// better than S3's primitives.
type S3Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	partSize int64
}

// NewS3Store validates the configuration and returns the store.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 store: client is nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = defaultPartSize
	}
	if partSize < minPartSize {
		partSize = minPartSize
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		client:   cfg.Client,
		bucket:   cfg.Bucket,
		prefix:   prefix,
		partSize: partSize,
	}, nil
}

func (s *S3Store) nodeKey(p string) string {
	return s.prefix + "nodes" + p
}

func (s *S3Store) contentKey(contentID string) string {
	return s.prefix + "content/" + contentID
}

// GetNode fetches and decodes the node record, or returns (nil, nil) if no
// record object exists.
func (s *S3Store) GetNode(ctx context.Context, p string) (*store.Node, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.nodeKey(p)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get node %s: %w", p, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read node %s: %w", p, err)
	}

	var node store.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode node %s: %w", p, err)
	}

	return &node, nil
}

// SaveNode writes the node record, preserving store-derived fields of an
// existing record and assigning a content ID to a new file node.
//
// Read-modify-write on S3 is not atomic; concurrent saves of the same path
// are last-write-wins, which is the consistency the store contract offers.
func (s *S3Store) SaveNode(ctx context.Context, p string, node *store.Node) error {
	if node == nil {
		return fmt.Errorf("save %s: node is nil", p)
	}

	existing, err := s.GetNode(ctx, p)
	if err != nil {
		return err
	}

	saved := node.Clone()

	if existing != nil {
		if existing.Directory != saved.Directory {
			return fmt.Errorf("save %s: %w", p, store.ErrExists)
		}
		saved.ContentID = existing.ContentID
		saved.Size = existing.Size
	} else if !saved.Directory {
		saved.ContentID = uuid.NewString()
		saved.Size = 0
	}

	return s.putNode(ctx, p, saved)
}

func (s *S3Store) putNode(ctx context.Context, p string, node *store.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("encode node %s: %w", p, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.nodeKey(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put node %s: %w", p, err)
	}

	return nil
}

// DeleteNode removes the node record and its content object.
func (s *S3Store) DeleteNode(ctx context.Context, p string) error {
	node, err := s.GetNode(ctx, p)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("delete %s: %w", p, store.ErrNotFound)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.nodeKey(p)),
	})
	if err != nil {
		return fmt.Errorf("delete node %s: %w", p, err)
	}

	if node.ContentID != "" {
		_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.contentKey(node.ContentID)),
		})
		if err != nil {
			return fmt.Errorf("delete content %s: %w", node.ContentID, err)
		}
	}

	return nil
}

// MoveNode copies the record to the target path and deletes the source.
// The content object is untouched: the content ID travels in the record.
func (s *S3Store) MoveNode(ctx context.Context, fromPath, toPath string) error {
	node, err := s.GetNode(ctx, fromPath)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("move %s: %w", fromPath, store.ErrNotFound)
	}

	node.Name = path.Base(toPath)

	if err := s.putNode(ctx, toPath, node); err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.nodeKey(fromPath)),
	})
	if err != nil {
		return fmt.Errorf("move node %s -> %s: %w", fromPath, toPath, err)
	}

	return nil
}

// ListChildren lists record objects one level under the directory path
// using a delimiter scan, then fetches each child record.
func (s *S3Store) ListChildren(ctx context.Context, p string) ([]*store.Node, error) {
	node, err := s.GetNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("list %s: %w", p, store.ErrNotFound)
	}
	if !node.Directory {
		return nil, fmt.Errorf("list %s: %w", p, store.ErrNotDirectory)
	}

	childPrefix := s.nodeKey(p)
	if !strings.HasSuffix(childPrefix, "/") {
		childPrefix += "/"
	}

	var children []*store.Node

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(childPrefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list children %s: %w", p, err)
		}

		for _, object := range page.Contents {
			childPath := strings.TrimPrefix(aws.ToString(object.Key), s.prefix+"nodes")

			// The root record's key matches its own child prefix; skip it.
			if childPath == p {
				continue
			}

			child, err := s.GetNode(ctx, childPath)
			if err != nil {
				return nil, err
			}
			if child != nil {
				children = append(children, child)
			}
		}
	}

	return children, nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	// HeadObject and some S3-compatible services report plain 404s.
	var apiErr interface{ ErrorCode() string }
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey")
}
