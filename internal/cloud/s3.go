package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"nts-go/internal/config"
	"nts-go/internal/model"
	"nts-go/internal/nts"
)

const defaultS3Concurrency = 16

// s3API is the subset of the S3 client used by S3Database.
type s3API interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Database stores each record as an object:
//
//	<prefix>/<recordType>/<recordName>.json
//
// One Modify call uploads its records concurrently and counts as one
// round-trip.
type S3Database struct {
	client      s3API
	uploader    *manager.Uploader
	bucket      string
	prefix      string
	payload     *Payload
	concurrency int
}

// NewS3Database builds an S3 client from cfg using the default AWS
// credential chain, or static keys when both are set. A custom endpoint
// switches to path-style addressing for S3-compatible services.
func NewS3Database(ctx context.Context, cfg config.RemoteConfig, payload *Payload) (*S3Database, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 remote requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Database(client, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Concurrency, payload), nil
}

func newS3Database(client s3API, bucket, prefix string, concurrency int, payload *Payload) *S3Database {
	if concurrency <= 0 {
		concurrency = defaultS3Concurrency
	}
	return &S3Database{
		client:      client,
		uploader:    manager.NewUploader(client),
		bucket:      bucket,
		prefix:      strings.Trim(prefix, "/"),
		payload:     payload,
		concurrency: concurrency,
	}
}

func (d *S3Database) AccountStatus(ctx context.Context) error {
	if _, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(d.bucket)}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (d *S3Database) Query(ctx context.Context, recordType string) ([]QueryResult, error) {
	dir := d.typePrefix(recordType)
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
		Prefix: aws.String(dir),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", recordType, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
	}

	out := make([]QueryResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, key := range keys {
		out[i].Name = strings.TrimSuffix(path.Base(key), ".json")
		g.Go(func() error {
			data, err := d.get(gctx, key)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				out[i].Err = err
				return nil
			}
			out[i].Record, out[i].Err = d.payload.Unmarshal(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", recordType, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *S3Database) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Modify uploads every record concurrently. Individual upload failures are
// reported per record; only a context error fails the whole call.
func (d *S3Database) Modify(ctx context.Context, records []model.WireRecord) ([]RecordError, error) {
	if len(records) > nts.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(records), nts.MaxBatchSize)
	}

	errs := make([]error, len(records))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			errs[i] = d.put(ctx, rec)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed []RecordError
	for i, err := range errs {
		if err != nil {
			failed = append(failed, RecordError{Name: records[i].Name, Err: err})
		}
	}
	return failed, nil
}

func (d *S3Database) put(ctx context.Context, rec model.WireRecord) error {
	data, err := d.payload.Marshal(rec)
	if err != nil {
		return err
	}
	contentType := "application/json"
	if d.payload.Sealed() {
		contentType = "application/octet-stream"
	}
	_, err = d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.recordKey(rec.Type, rec.Name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s %s: %w", rec.Type, rec.Name, err)
	}
	return nil
}

func (d *S3Database) Delete(ctx context.Context, recordType string, names []string) ([]RecordError, error) {
	if len(names) == 0 {
		return nil, nil
	}

	ids := make([]types.ObjectIdentifier, len(names))
	byKey := make(map[string]string, len(names))
	for i, name := range names {
		key := d.recordKey(recordType, name)
		ids[i] = types.ObjectIdentifier{Key: aws.String(key)}
		byKey[key] = name
	}

	out, err := d.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(d.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("deleting %s records: %w", recordType, err)
	}

	var failed []RecordError
	for _, e := range out.Errors {
		key := aws.ToString(e.Key)
		name, ok := byKey[key]
		if !ok {
			name = key
		}
		failed = append(failed, RecordError{
			Name: name,
			Err:  errors.New(aws.ToString(e.Code) + ": " + aws.ToString(e.Message)),
		})
	}
	return failed, nil
}

func (d *S3Database) typePrefix(recordType string) string {
	if d.prefix == "" {
		return recordType + "/"
	}
	return d.prefix + "/" + recordType + "/"
}

func (d *S3Database) recordKey(recordType, name string) string {
	return d.typePrefix(recordType) + name + ".json"
}

// Compile-time check that S3Database implements Database
var _ Database = (*S3Database)(nil)
