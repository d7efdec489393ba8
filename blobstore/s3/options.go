package s3

type options struct {
	prefix      string
	region      string
	endpoint    string
	pathStyle   bool
	partSize    int64
	concurrency int
}

func defaultOptions() options {
	return options{
		partSize:    8 * 1024 * 1024,
		concurrency: 5,
	}
}

// Option configures a Store.
type Option func(*options)

// WithPrefix sets the key prefix (e.g. "snapshots/").
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region of the default AWS configuration. Only New uses it.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint points the client at an S3-compatible endpoint. Only New uses it.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithPathStyle enables path-style addressing. Only New uses it.
func WithPathStyle(enabled bool) Option {
	return func(o *options) {
		o.pathStyle = enabled
	}
}

// WithUploadPartSize sets the multipart part size used by Create.
// Default: 8MB.
func WithUploadPartSize(n int64) Option {
	return func(o *options) {
		o.partSize = n
	}
}

// WithUploadConcurrency sets the number of parts Create uploads in parallel.
// Default: 5.
func WithUploadConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
