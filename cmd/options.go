package cmd

// Options holds the shared command-line options for the repohealth CLI.
type Options struct {
	Owner     string
	Repo      string
	Since     string
	Now       string
	DataDir   string
	Format    string
	Verbosity int
	Save      bool
	Markdown  bool
	Limit     int
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Limit: 10,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRepository sets the owner and repository to analyze.
func WithRepository(owner, repo string) Option {
	return func(o *Options) {
		o.Owner = owner
		o.Repo = repo
	}
}

// WithSince sets the history cutoff date (YYYY-MM-DD).
func WithSince(since string) Option {
	return func(o *Options) {
		o.Since = since
	}
}

// WithNow pins the analysis instant (RFC 3339).
func WithNow(now string) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// WithDataDir sets the directory for raw and generated data files.
func WithDataDir(dir string) Option {
	return func(o *Options) {
		o.DataDir = dir
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}
