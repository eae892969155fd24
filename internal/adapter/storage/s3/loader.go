// Package s3 loads source documents from S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

// Scheme is the URI scheme handled by Loader.
const Scheme = "s3://"

// Options configure the S3 client.
type Options struct {
	Region         string
	Endpoint       string // non-empty for MinIO/LocalStack
	ForcePathStyle bool
	AccessKey      string
	SecretKey      string
	MaxBytes       int64
}

type getObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader fetches documents addressed as s3://bucket/key.
type Loader struct {
	api      getObjectAPI
	maxBytes int64
}

// NewLoader builds an S3 client from the default AWS chain, overriding
// region, endpoint and static credentials when given.
func NewLoader(ctx context.Context, opts Options) (*Loader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("op=s3.NewLoader: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})
	return newLoader(client, opts.MaxBytes), nil
}

func newLoader(api getObjectAPI, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Loader{api: api, maxBytes: maxBytes}
}

// IsURI reports whether s addresses an S3 object.
func IsURI(s string) bool { return strings.HasPrefix(s, Scheme) }

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(raw string) (bucket, key string, err error) {
	if !IsURI(raw) {
		return "", "", fmt.Errorf("%w: not an s3 uri: %q", domain.ErrInvalidArgument, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 uri needs bucket and key: %q", domain.ErrInvalidArgument, raw)
	}
	return u.Host, key, nil
}

// Load downloads the object and returns it as a SourceDocument. The MIME
// type comes from the object metadata, or is sniffed when that is generic.
func (l *Loader) Load(ctx context.Context, uri string) (domain.SourceDocument, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	out, err := l.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("op=s3.Load bucket=%s key=%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, l.maxBytes+1))
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("op=s3.Load: read body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return domain.SourceDocument{}, fmt.Errorf("op=s3.Load: %w", errTooLarge)
	}

	mime := aws.ToString(out.ContentType)
	if domain.IsGenericMIME(mime) {
		mime = mimetype.Detect(data).String()
	}
	return domain.SourceDocument{Data: data, MIME: mime, Filename: path.Base(key)}, nil
}

var errTooLarge = fmt.Errorf("%w: object exceeds size limit", domain.ErrInvalidArgument)
