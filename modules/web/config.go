package web

import "time"

// Config holds the transport-level settings.
type Config struct {
	// BaseURL is the externally reachable origin, used for upload handoff
	// URLs and checkout redirects.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// MaxUploadBytes caps multipart uploads. 20MB covers phone camera
	// originals before normalization.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`

	CheckoutSuccessPath string `env:"CHECKOUT_SUCCESS_PATH" envDefault:"/post-checkout"`
	CheckoutCancelPath  string `env:"CHECKOUT_CANCEL_PATH" envDefault:"/upgrade"`
}
