package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ftserve/internal/fasttext"
	"ftserve/internal/manager"
	"ftserve/pkg/types"
)

type mockService struct {
	models []types.Model
	status types.StatusResponse
	ready  bool
	err    error

	loadReq     types.LoadRequest
	replace     bool
	unloads     int
	predictText string
	predictK    int
	testK       int
	vectorKind  manager.VectorKind
	trainReq    types.TrainRequest
}

func (m *mockService) ListModels() []types.Model    { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

func (m *mockService) Load(req types.LoadRequest) error {
	m.loadReq = req
	if m.err == nil {
		m.status.State = "loaded"
	}
	return m.err
}

func (m *mockService) LoadDefault(replace bool) error {
	m.replace = replace
	if m.err == nil {
		m.status.State = "loaded"
		m.status.Bundled = true
	}
	return m.err
}

func (m *mockService) Unload() error {
	m.unloads++
	m.status.State = "unloaded"
	return m.err
}

func (m *mockService) Predict(text string, k int, threshold float32) (types.PredictResponse, error) {
	m.predictText, m.predictK = text, k
	if m.err != nil {
		return types.PredictResponse{}, m.err
	}
	return types.PredictResponse{
		Predictions: []types.Prediction{{Label: "__label__sports", Probability: 0.9, LogProb: -0.105}},
		Label:       "__label__sports",
	}, nil
}

func (m *mockService) Vector(kind manager.VectorKind, text string) (types.VectorResponse, error) {
	m.vectorKind = kind
	if m.err != nil {
		return types.VectorResponse{}, m.err
	}
	return types.VectorResponse{Text: text, Vector: []float32{0.1, 0.2}, Dim: 2}, nil
}

func (m *mockService) Info() (types.ModelInfo, error) {
	return types.ModelInfo{Path: "/m.bin", NWords: 3, NLabels: 2, Args: types.Hyperparameters{Dim: 2}}, m.err
}

func (m *mockService) Words() ([]string, error)  { return []string{"a", "b", "c"}, m.err }
func (m *mockService) Labels() ([]string, error) { return nil, m.err }

func (m *mockService) Test(path string, k int) (types.TestResponse, error) {
	m.testK = k
	return types.TestResponse{Report: "N\t1\nP@1\t1.000\nR@1\t1.000\n"}, m.err
}

func (m *mockService) Train(req types.TrainRequest) (types.TrainResponse, error) {
	m.trainReq = req
	return types.TrainResponse{OperationID: "op-1", Argv: append([]string{"fasttext"}, req.Args...)}, m.err
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "m1"}, {ID: "m2"}}}
	w := do(t, NewMux(svc), http.MethodGet, "/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 {
		t.Fatalf("models len=%d", len(body.Models))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "loaded", LoadsTotal: 3}}
	w := do(t, NewMux(svc), http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "loaded" || body.LoadsTotal != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthAndReadyz(t *testing.T) {
	h := NewMux(&mockService{ready: true})
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz=%d %q", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz=%d", w.Code)
	}
	w := do(t, NewMux(&mockService{}), http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "no model") {
		t.Fatalf("readyz not ready=%d %q", w.Code, w.Body.String())
	}
}

func TestLifecycleHandlers(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	w := do(t, h, http.MethodPost, "/model/load", `{"path":"/models/a.bin","replace":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("load=%d %s", w.Code, w.Body.String())
	}
	if svc.loadReq.Path != "/models/a.bin" || !svc.loadReq.Replace {
		t.Fatalf("request not forwarded: %+v", svc.loadReq)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil || st.State != "loaded" {
		t.Fatalf("load must answer with the new status: %+v %v", st, err)
	}

	// empty body is accepted
	w = do(t, h, http.MethodPost, "/model/load-default", "")
	if w.Code != http.StatusOK || svc.replace {
		t.Fatalf("load-default=%d replace=%v", w.Code, svc.replace)
	}
	w = do(t, h, http.MethodPost, "/model/load-default", `{"replace":true}`)
	if w.Code != http.StatusOK || !svc.replace {
		t.Fatalf("load-default replace=%d %v", w.Code, svc.replace)
	}

	w = do(t, h, http.MethodPost, "/model/unload", "")
	if w.Code != http.StatusOK || svc.unloads != 1 {
		t.Fatalf("unload=%d unloads=%d", w.Code, svc.unloads)
	}
}

func TestPredictHandler(t *testing.T) {
	svc := &mockService{}
	w := do(t, NewMux(svc), http.MethodPost, "/predict", `{"text":"I like soccer","k":3,"threshold":0.1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.predictText != "I like soccer" || svc.predictK != 3 {
		t.Fatalf("request not forwarded: %q k=%d", svc.predictText, svc.predictK)
	}
	var body types.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Label != "__label__sports" || len(body.Predictions) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestKDefaultsOnlyWhenOmitted(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	cases := []struct {
		body  string
		wantK int
	}{
		{`{"text":"x"}`, 1},
		{`{"text":"x","k":0}`, 0},
		{`{"text":"x","k":-2}`, -2},
	}
	for _, c := range cases {
		if w := do(t, h, http.MethodPost, "/predict", c.body); w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", c.body, w.Code)
		}
		if svc.predictK != c.wantK {
			t.Fatalf("%s: predict k=%d want %d", c.body, svc.predictK, c.wantK)
		}
	}
	if w := do(t, h, http.MethodPost, "/test", `{"path":"/x"}`); w.Code != http.StatusOK || svc.testK != 1 {
		t.Fatalf("test omitted k: status=%d k=%d", w.Code, svc.testK)
	}
	if w := do(t, h, http.MethodPost, "/test", `{"path":"/x","k":0}`); w.Code != http.StatusOK || svc.testK != 0 {
		t.Fatalf("test explicit k: status=%d k=%d", w.Code, svc.testK)
	}
}

func TestRequestValidation(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{"text":"x"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/predict", "not-json"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/test", `{"k":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing path, got %d", w.Code)
	}

	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	if w := do(t, h, http.MethodPost, "/predict", `{"text":"`+strings.Repeat("x", 64)+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", w.Code)
	}
}

func TestVectorHandlers(t *testing.T) {
	for _, kind := range []manager.VectorKind{manager.VectorWord, manager.VectorSentence, manager.VectorSubword} {
		svc := &mockService{}
		w := do(t, NewMux(svc), http.MethodPost, "/vectors/"+string(kind), `{"text":"ball"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", kind, w.Code)
		}
		if svc.vectorKind != kind {
			t.Fatalf("kind=%q want %q", svc.vectorKind, kind)
		}
		var body types.VectorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Dim != 2 || body.Text != "ball" {
			t.Fatalf("%s: %+v %v", kind, body, err)
		}
	}
	if w := do(t, NewMux(&mockService{}), http.MethodPost, "/vectors/glyph", `{"text":"x"}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown kind status=%d", w.Code)
	}
}

func TestIntrospectionHandlers(t *testing.T) {
	h := NewMux(&mockService{})
	w := do(t, h, http.MethodGet, "/model/info", "")
	var info types.ModelInfo
	if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &info) != nil || info.NWords != 3 {
		t.Fatalf("info=%d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/model/words", "")
	var words types.StringsResponse
	if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &words) != nil || words.Count != 3 {
		t.Fatalf("words=%d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/model/labels", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("labels=%d %s", w.Code, w.Body.String())
	}
}

func TestTestAndTrainHandlers(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer SetLogger(zerolog.Nop())
	svc := &mockService{}
	h := NewMux(svc)
	w := do(t, h, http.MethodPost, "/test?log=debug", `{"path":"/data/valid.txt","k":1}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "P@1") {
		t.Fatalf("test=%d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/train", `{"args":["supervised","-input","a.txt","-output","m"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("train=%d %s", w.Code, w.Body.String())
	}
	var tr types.TrainResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil || tr.Argv[0] != "fasttext" || tr.OperationID != "op-1" {
		t.Fatalf("unexpected train response: %+v %v", tr, err)
	}
	if len(svc.trainReq.Args) != 5 {
		t.Fatalf("train request not forwarded: %+v", svc.trainReq)
	}
}

func TestTrainRateLimit(t *testing.T) {
	SetTrainRatePerMinute(1)
	defer SetTrainRatePerMinute(0)
	h := NewMux(&mockService{})
	body := `{"mode":"supervised"}`
	if w := do(t, h, http.MethodPost, "/train", body); w.Code != http.StatusOK {
		t.Fatalf("first train=%d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/train", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not loaded", fasttext.ErrModelNotLoaded, http.StatusConflict},
		{"already loaded", fasttext.ErrAlreadyLoaded, http.StatusConflict},
		{"file not found", fasttext.ErrFileNotFound("/x.bin"), http.StatusNotFound},
		{"registry miss", manager.ErrModelNotFound("x"), http.StatusNotFound},
		{"format", fasttext.ErrIncompatibleFormat("/x.bin"), http.StatusBadRequest},
		{"invalid k", fasttext.ErrInvalidArgument("k must be positive"), http.StatusBadRequest},
		{"bad request", manager.ErrBadRequest("id or path is required"), http.StatusBadRequest},
		{"init", fasttext.ErrInitialization("/x.bin", errors.New("corrupt")), http.StatusUnprocessableEntity},
		{"dependency", manager.ErrDependencyUnavailable("fasttext binary not found"), http.StatusServiceUnavailable},
		{"closed", manager.ErrClosed, http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"generic", io.EOF, http.StatusInternalServerError},
	}
	for _, c := range cases {
		h := NewMux(&mockService{err: c.err})
		w := do(t, h, http.MethodPost, "/predict", `{"text":"x"}`)
		if w.Code != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, w.Code)
		}
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != c.want || body.Error == "" {
			t.Fatalf("%s: bad error body %q", c.name, w.Body.String())
		}
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true})
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}

type sanityService struct {
	mockService
	rep manager.SanityReport
}

func (s *sanityService) SanityCheck() manager.SanityReport { return s.rep }

func TestSanityHandler(t *testing.T) {
	if w := do(t, NewMux(&mockService{}), http.MethodGet, "/sanity", ""); w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", w.Code)
	}
	ok := &sanityService{rep: manager.SanityReport{Engine: "cli", Available: true, BinPath: "/usr/bin/fasttext"}}
	if w := do(t, NewMux(ok), http.MethodGet, "/sanity", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	bad := &sanityService{rep: manager.SanityReport{Engine: "cli", Error: "not found"}}
	if w := do(t, NewMux(bad), http.MethodGet, "/sanity", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
