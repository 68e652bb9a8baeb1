package ingestguard

// Option configures a single Write call on a FileSystem
type Option func(*Options)

// Options contains the settings drivers honor on Write
type Options struct {
	// ContentType is the verified MIME type of the content
	ContentType string

	// Metadata is stored alongside the file where the backend supports it
	Metadata map[string]string

	// Overwrite determines whether to overwrite existing files
	Overwrite bool
}

// WithContentType sets the content type of the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the file
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithOverwrite enables or disables overwriting existing files
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

// ApplyOptions folds opts into an Options value. Drivers call it at the
// top of Write.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
