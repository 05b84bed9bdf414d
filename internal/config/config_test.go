package config

import (
	"strings"
	"testing"
)

func fullConfig() *Config {
	return &Config{
		Port:                 "8000",
		PublicBaseURL:        "https://agent.example.com",
		GeminiAPIKey:         "g-key",
		DeepgramAPIKey:       "d-key",
		TwilioAccountSID:     "AC123",
		TwilioAuthToken:      "token",
		TwilioFromNumber:     "+15550001111",
		SheetID:              "sheet-id",
		SheetCredentialsFile: "creds.json",
		AnswerHoldMode:       HoldPause,
	}
}

func TestValidateComplete(t *testing.T) {
	if err := fullConfig().Validate(); err != nil {
		t.Fatalf("complete config should validate: %v", err)
	}
}

func TestValidateNamesMissingKeys(t *testing.T) {
	cfg := fullConfig()
	cfg.GeminiAPIKey = ""
	cfg.TwilioAuthToken = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"GEMINI_API_KEY", "TWILIO_AUTH_TOKEN"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
	if strings.Contains(err.Error(), "DEEPGRAM_API_KEY") {
		t.Errorf("error should only name missing keys: %v", err)
	}
}

func TestDerivedURLs(t *testing.T) {
	cfg := fullConfig()
	if got := cfg.AnswerURL(); got != "https://agent.example.com/plivo_answer" {
		t.Errorf("unexpected answer url: %q", got)
	}
	if got := cfg.MediaStreamURL(); got != "wss://agent.example.com/media" {
		t.Errorf("unexpected media stream url: %q", got)
	}
}
