package cfg

type Cfg struct {
	// Trigger configuration
	On    string
	Cache bool

	// Cache configuration
	CacheDir string
	MediaDir string

	// Application metadata
	UserAgent string
	Timeout   int // seconds, per HTTP fetch
	Debug     bool
	Version   string
}
