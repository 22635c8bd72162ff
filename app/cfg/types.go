package cfg

import "time"

type Cfg struct {
	// Database configuration
	DBPath string

	// HTTP configuration
	Port        string
	CORSOrigins []string
	JWTSecret   string

	// News ingestion
	SourcesDir   string
	NewsAPIKey   string
	NewsAPIURL   string
	NewsTimeout  time.Duration
	RedisAddr    string
	NewsCacheTTL time.Duration
	WarmInterval time.Duration // zero disables cache warm-up
	WorkerCount  int

	// Generative model
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration
	AIRPS     float64

	// Delivery
	ResendAPIKey string
	MailFrom     string
	ChromePath   string
	PDFTimeout   time.Duration

	// Bootstrap
	SuperadminEmail    string
	SuperadminPassword string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// MailEnabled reports whether an email-sending credential is configured.
func (c *Cfg) MailEnabled() bool {
	return c.ResendAPIKey != "" && c.MailFrom != ""
}

// AIEnabled reports whether the generative model can be reached.
func (c *Cfg) AIEnabled() bool {
	return c.AIAPIKey != "" && c.AIModel != ""
}
