package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dubeyashu123/Siaara-Backend/internal/config"
	"github.com/dubeyashu123/Siaara-Backend/internal/dispatch"
)

type fakeDispatcher struct {
	result dispatch.Result
	err    error
}

func (f *fakeDispatcher) DispatchNext(ctx context.Context) (dispatch.Result, error) {
	return f.result, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		PublicBaseURL:  "https://agent.example.com",
		Greeting:       "Hi, I'm Rahul from Siaara.",
		AnswerHoldMode: config.HoldPause,
	}
}

func newTestRouter(d CallDispatcher) http.Handler {
	return NewRouter(&Handler{Config: testConfig(), Dispatcher: d})
}

func TestHome(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %q", body["status"])
	}
}

func TestCallReturnsDispatchResult(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{result: dispatch.Result{
		Status:  dispatch.StatusCalling,
		Message: "Call initiated for Bharat.",
		CallSID: "CA123",
		Row:     3,
	}})

	req := httptest.NewRequest(http.MethodPost, "/call", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body dispatch.Result
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Status != "calling" || body.CallSID != "CA123" || body.Row != 3 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestCallDispatchErrorIs500WithDetail(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{err: errors.New("twilio: invalid phone number")})

	req := httptest.NewRequest(http.MethodPost, "/call", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.Contains(body["detail"], "invalid phone number") {
		t.Errorf("provider error text should surface in detail: %q", body["detail"])
	}
}

func TestCallRejectsGet(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/call", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestAnswerWebhookDocument(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	form := url.Values{"CallSid": {"CA123"}}
	req := httptest.NewRequest(http.MethodPost, "/plivo_answer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("expected application/xml, got %q", ct)
	}
	body := res.Body.String()
	if got := strings.Count(body, "<Stream"); got != 1 {
		t.Errorf("expected exactly one stream verb, got %d: %q", got, body)
	}
	if got := strings.Count(body, "<Say>"); got != 1 {
		t.Errorf("expected exactly one greeting verb, got %d: %q", got, body)
	}
	if !strings.Contains(body, "wss://agent.example.com/media?call_sid=CA123") {
		t.Errorf("stream must point at the relay with the call sid: %q", body)
	}
}

func TestAnswerWebhookAcceptsGet(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/plivo_answer", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "wss://agent.example.com/media") {
		t.Errorf("stream verb missing: %q", res.Body.String())
	}
}

func TestTwimlReplySpeaksAndRedirects(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	form := url.Values{"text": {"Thanks for your time!"}}
	req := httptest.NewRequest(http.MethodPost, "/twiml_reply", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Thanks for your time!") {
		t.Errorf("reply text missing: %q", body)
	}
	if !strings.Contains(body, "https://agent.example.com/plivo_answer") {
		t.Errorf("redirect to answer webhook missing: %q", body)
	}
}

func TestEndCallHangsUp(t *testing.T) {
	router := newTestRouter(&fakeDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/end_call", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<Hangup") {
		t.Errorf("expected hangup verb: %q", res.Body.String())
	}
}
