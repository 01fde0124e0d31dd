package dynamoclient

import "time"

type Option func(c *DynamoClient)

func ConnAttempts(attempts int) Option {
	return func(c *DynamoClient) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *DynamoClient) {
		c.connTimeout = timeout
	}
}

// StaticCredentials overrides the default AWS credential chain.
func StaticCredentials(accessKey, secretKey string) Option {
	return func(c *DynamoClient) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}
