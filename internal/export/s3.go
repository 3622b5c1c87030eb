package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// putObjectAPI is the slice of the S3 client the publisher needs.
type putObjectAPI interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads the document to one S3 object.
type S3Publisher struct {
	client putObjectAPI
	bucket string
	key    string
	region string
}

// NewS3Publisher creates an S3 publisher. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Publisher(region, bucket, key, accessKeyID, secretAccessKey string) (*S3Publisher, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Publisher{client: s3.New(sess), bucket: bucket, key: key, region: region}, nil
}

// Publish uploads the document and returns its public URL.
func (p *S3Publisher) Publish(ctx context.Context, doc Document) (string, error) {
	data, err := encode(doc)
	if err != nil {
		return "", err
	}
	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(p.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=300"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, p.key), nil
}
