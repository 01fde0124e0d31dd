package s3client

import "time"

type Option func(c *S3Client)

func ConnAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.connTimeout = timeout
	}
}

// StaticCredentials replaces the default credential chain, e.g. for MinIO
// or LocalStack.
func StaticCredentials(accessKey, secretKey string) Option {
	return func(c *S3Client) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

func Region(region string) Option {
	return func(c *S3Client) {
		if region != "" {
			c.region = region
		}
	}
}

// PathStyle addresses buckets as <endpoint>/<bucket>. On by default, since
// S3-compatible stores rarely resolve virtual-host buckets.
func PathStyle(use bool) Option {
	return func(c *S3Client) {
		c.usePathStyle = use
	}
}
