package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/adrianwalker/ftpserver-filesystem/pkg/store"
)

// OpenWriteStream returns a writer that streams content to a fresh content
// object, using multipart upload once the buffered bytes exceed the part
// size. Close completes the upload, swings the node record over to the new
// content ID, and deletes the replaced content object — so readers see old
// or new content in full, never a torn mix.
func (s *S3Store) OpenWriteStream(ctx context.Context, p string) (io.WriteCloser, error) {
	node, err := s.GetNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("write %s: %w", p, store.ErrIsDirectory)
	}

	return &s3Writer{
		store:     s,
		ctx:       ctx,
		path:      p,
		contentID: uuid.NewString(),
		buffer:    &bytes.Buffer{},
	}, nil
}

// OpenReadStream returns the content object's body. A never-written file
// reads as empty.
func (s *S3Store) OpenReadStream(ctx context.Context, p string) (io.ReadCloser, error) {
	node, err := s.GetNode(ctx, p)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrNotFound)
	}
	if node.Directory {
		return nil, fmt.Errorf("read %s: %w", p, store.ErrIsDirectory)
	}

	if node.ContentID == "" {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.contentKey(node.ContentID)),
	})
	if err != nil {
		// A content ID with no object behind it means the file was never
		// written; it reads as empty, same as an empty content ID.
		if isNoSuchKey(err) {
			return io.NopCloser(bytes.NewReader(nil)), nil
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}

	return out.Body, nil
}

// s3Writer implements io.WriteCloser with automatic multipart upload.
// Small content (under one part) skips multipart and lands in a single
// PutObject at Close.
type s3Writer struct {
	store *S3Store
	ctx   context.Context

	path      string
	contentID string

	buffer     *bytes.Buffer
	uploadID   string
	parts      []types.CompletedPart
	partNum    int32
	totalBytes int64

	closed bool
	err    error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, fmt.Errorf("write %s: stream is closed", w.path)
	}

	n, err := w.buffer.Write(p)
	w.totalBytes += int64(n)
	if err != nil {
		w.err = err
		return n, err
	}

	for int64(w.buffer.Len()) >= w.store.partSize {
		if err := w.uploadPart(); err != nil {
			w.err = err
			return n, err
		}
	}

	return n, nil
}

func (w *s3Writer) uploadPart() error {
	if w.uploadID == "" {
		out, err := w.store.client.CreateMultipartUpload(w.ctx, &s3.CreateMultipartUploadInput{
			Bucket: aws.String(w.store.bucket),
			Key:    aws.String(w.store.contentKey(w.contentID)),
		})
		if err != nil {
			return fmt.Errorf("begin multipart upload for %s: %w", w.contentID, err)
		}
		w.uploadID = aws.ToString(out.UploadId)
	}

	size := w.store.partSize
	if int64(w.buffer.Len()) < size {
		size = int64(w.buffer.Len())
	}

	// Copy the part out of the buffer: the buffer's backing array is
	// reused across parts.
	data := make([]byte, size)
	_, _ = w.buffer.Read(data)

	w.partNum++
	partNum := w.partNum

	out, err := w.store.client.UploadPart(w.ctx, &s3.UploadPartInput{
		Bucket:     aws.String(w.store.bucket),
		Key:        aws.String(w.store.contentKey(w.contentID)),
		UploadId:   aws.String(w.uploadID),
		PartNumber: aws.Int32(partNum),
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		w.abort()
		return fmt.Errorf("upload part %d of %s: %w", partNum, w.contentID, err)
	}

	w.parts = append(w.parts, types.CompletedPart{
		ETag:       out.ETag,
		PartNumber: aws.Int32(partNum),
	})

	return nil
}

// abort cancels an in-flight multipart upload. Runs on a detached timeout
// so a cancelled request context cannot leave the upload dangling.
func (w *s3Writer) abort() {
	if w.uploadID == "" {
		return
	}

	abortCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, _ = w.store.client.AbortMultipartUpload(abortCtx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(w.store.bucket),
		Key:      aws.String(w.store.contentKey(w.contentID)),
		UploadId: aws.String(w.uploadID),
	})
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.err != nil {
		w.abort()
		return w.err
	}

	if err := w.finishContent(); err != nil {
		return err
	}

	return w.commitNode()
}

// finishContent makes the new content object durable, via a plain PutObject
// for single-part content or by completing the multipart upload.
func (w *s3Writer) finishContent() error {
	if w.uploadID == "" {
		_, err := w.store.client.PutObject(w.ctx, &s3.PutObjectInput{
			Bucket: aws.String(w.store.bucket),
			Key:    aws.String(w.store.contentKey(w.contentID)),
			Body:   bytes.NewReader(w.buffer.Bytes()),
		})
		if err != nil {
			return fmt.Errorf("put content %s: %w", w.contentID, err)
		}
		return nil
	}

	if w.buffer.Len() > 0 {
		if err := w.uploadPart(); err != nil {
			return err
		}
	}

	_, err := w.store.client.CompleteMultipartUpload(w.ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(w.store.bucket),
		Key:      aws.String(w.store.contentKey(w.contentID)),
		UploadId: aws.String(w.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: w.parts,
		},
	})
	if err != nil {
		w.abort()
		return fmt.Errorf("complete multipart upload for %s: %w", w.contentID, err)
	}

	return nil
}

// commitNode swings the node record to the new content ID and removes the
// replaced content object. A node deleted mid-write means the new content
// is orphaned garbage; it is removed rather than committed.
func (w *s3Writer) commitNode() error {
	node, err := w.store.GetNode(w.ctx, w.path)
	if err != nil {
		return err
	}

	if node == nil {
		_, _ = w.store.client.DeleteObject(w.ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(w.store.bucket),
			Key:    aws.String(w.store.contentKey(w.contentID)),
		})
		return nil
	}

	oldContentID := node.ContentID
	node.ContentID = w.contentID
	node.Size = w.totalBytes
	node.Modified = store.NowMillis()

	if err := w.store.putNode(w.ctx, w.path, node); err != nil {
		return err
	}

	if oldContentID != "" && oldContentID != w.contentID {
		_, err = w.store.client.DeleteObject(w.ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(w.store.bucket),
			Key:    aws.String(w.store.contentKey(oldContentID)),
		})
		if err != nil {
			return fmt.Errorf("delete replaced content %s: %w", oldContentID, err)
		}
	}

	return nil
}
