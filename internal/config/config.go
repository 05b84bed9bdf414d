package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// HoldMode controls how the answer document keeps the call leg alive while
// the media stream runs.
type HoldMode string

const (
	// HoldPause keeps the leg open with a long <Pause>.
	HoldPause HoldMode = "pause"
	// HoldGather keeps the leg open with a blocking single-digit <Gather>.
	HoldGather HoldMode = "gather"
)

// Transcription holds the Deepgram live-session options. Telephony audio is
// 8kHz mono mulaw; the model is the phone-call tuned one.
type Transcription struct {
	Model          string
	Language       string
	Encoding       string
	SampleRate     int
	Channels       int
	Punctuate      bool
	InterimResults bool
	// PrimingFrames is the number of 20ms silence frames written right
	// after the stream is configured. Without them Deepgram clips the
	// first word the lead says.
	PrimingFrames int
}

type Config struct {
	Port          string
	PublicBaseURL string
	LogLevel      string

	GeminiAPIKey   string
	DeepgramAPIKey string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SheetID              string
	SheetCredentialsFile string

	Greeting       string
	AnswerHoldMode HoldMode
	Transcription  Transcription
}

const defaultGreeting = "Hi, I'm Rahul from Siaara. I'm calling about a service that helps businesses like yours save time on sales calls. How are you today?"

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system environment variables")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		PublicBaseURL: strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", ""), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		DeepgramAPIKey: getEnv("DEEPGRAM_API_KEY", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		SheetID:              getEnv("GOOGLE_SHEETS_FILE_ID", ""),
		SheetCredentialsFile: getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", ""),

		Greeting:       getEnv("AGENT_GREETING", defaultGreeting),
		AnswerHoldMode: HoldMode(getEnv("ANSWER_HOLD_MODE", string(HoldPause))),

		Transcription: Transcription{
			Model:          "nova-2-phonecall",
			Language:       "en-IN",
			Encoding:       "mulaw",
			SampleRate:     8000,
			Channels:       1,
			Punctuate:      true,
			InterimResults: false,
			PrimingFrames:  10,
		},
	}

	if cfg.AnswerHoldMode != HoldPause && cfg.AnswerHoldMode != HoldGather {
		return nil, fmt.Errorf("config: invalid ANSWER_HOLD_MODE %q", cfg.AnswerHoldMode)
	}

	return cfg, nil
}

// Validate reports every missing required credential. A non-nil error is
// fatal at startup: the process refuses to serve half-configured.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GEMINI_API_KEY", c.GeminiAPIKey},
		{"DEEPGRAM_API_KEY", c.DeepgramAPIKey},
		{"TWILIO_ACCOUNT_SID", c.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", c.TwilioAuthToken},
		{"TWILIO_PHONE_NUMBER", c.TwilioFromNumber},
		{"GOOGLE_SHEETS_FILE_ID", c.SheetID},
		{"GOOGLE_SHEETS_CREDENTIALS_FILE", c.SheetCredentialsFile},
		{"PUBLIC_BASE_URL", c.PublicBaseURL},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if _, err := url.Parse(c.PublicBaseURL); err != nil {
		return fmt.Errorf("config: invalid PUBLIC_BASE_URL: %w", err)
	}
	return nil
}

// AnswerURL is the webhook Twilio fetches when the lead answers.
func (c *Config) AnswerURL() string {
	return c.PublicBaseURL + "/plivo_answer"
}

// MediaStreamURL is the wss address of the relay's media endpoint.
func (c *Config) MediaStreamURL() string {
	base := strings.TrimPrefix(strings.TrimPrefix(c.PublicBaseURL, "https://"), "http://")
	return "wss://" + base + "/media"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
