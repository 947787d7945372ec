package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/adapter/gemini"
	"github.com/xiaot623/gogo/vizstudio/internal/config"
	"github.com/xiaot623/gogo/vizstudio/internal/contextdoc"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/policy"
	store "github.com/xiaot623/gogo/vizstudio/internal/repository"
	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/tests/helpers"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// imageClient answers content requests with a fixed response.
type imageClient struct {
	resp *gemini.ContentResponse
	last *gemini.ContentRequest
}

func (c *imageClient) StreamChat(context.Context, *gemini.ChatRequest) (gemini.ChatStream, error) {
	return nil, errors.New("not used")
}

func (c *imageClient) GenerateContent(_ context.Context, req *gemini.ContentRequest) (*gemini.ContentResponse, error) {
	c.last = req
	return c.resp, nil
}

func newTestHandler(t *testing.T) (*Handler, store.Store, *imageClient) {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	cfg := config.Default()
	cfg.Documents = config.DefaultDocuments(t.TempDir())

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("policy engine: %v", err)
	}

	client := &imageClient{}
	logger := zap.NewNop()
	svc := service.New(db, contextdoc.NewResolver(db, nil, logger), client, cfg, engine, logger)
	return NewHandler(svc), db, client
}

type call struct {
	method  string
	target  string
	body    string
	session string
	params  map[string]string
}

func serve(t *testing.T, handler echo.HandlerFunc, cl call) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	var body io.Reader
	if cl.body != "" {
		body = strings.NewReader(cl.body)
	}
	req := httptest.NewRequest(cl.method, cl.target, body)
	if cl.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cl.session != "" {
		req.Header.Set(httpx.SessionHeader, cl.session)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range cl.params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := serve(t, h.Health, call{method: http.MethodGet, target: "/health"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGenerate(t *testing.T) {
	h, db, client := newTestHandler(t)
	client.resp = &gemini.ContentResponse{Candidates: []gemini.Candidate{{
		Parts: []domain.Part{
			domain.TextPart{Text: "Here is your hall"},
			domain.InlineImage{MIMEType: "image/png", Data: []byte{1, 2, 3}},
		},
	}}}

	rec := serve(t, h.Generate, call{
		method:  http.MethodPost,
		target:  "/api/generate",
		body:    `{"prompt":"Hall","apiKey":"k","referenceImage":"https://example.com/plan.png"}`,
		session: "s1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp service.GenerateResult
	decode(t, rec, &resp)
	if resp.Image != "data:image/png;base64,AQID" || resp.Text != "Here is your hall" || resp.ID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(client.last.Parts) != 1 {
		t.Fatalf("non-data reference must not add an image part, got %d parts", len(client.last.Parts))
	}

	images, err := db.ListImages(context.Background(), "s1")
	if err != nil || len(images) != 1 {
		t.Fatalf("expected one stored image, got %d (%v)", len(images), err)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	h, _, client := newTestHandler(t)
	client.resp = &gemini.ContentResponse{}

	rec := serve(t, h.Generate, call{method: http.MethodPost, target: "/api/generate", body: `{"prompt":"Hall","apiKey":"k"}`})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"error":"No image generated"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGeneratePolicyDenied(t *testing.T) {
	h, _, _ := newTestHandler(t)
	rec := serve(t, h.Generate, call{method: http.MethodPost, target: "/api/generate", body: `{"prompt":"Hall","apiKey":"k","imageSize":"16K"}`})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDocumentWriteThenRead(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.PutDocument, call{method: http.MethodPut, target: "/api/specs?doc=facility", body: `{"content":"abc"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var put struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, rec, &put)
	if !put.Success || put.Message != "Facility Specification (Hebrew) saved successfully" {
		t.Fatalf("unexpected response: %+v", put)
	}

	rec = serve(t, h.GetDocument, call{method: http.MethodGet, target: "/api/specs?doc=facility"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]string
	decode(t, rec, &got)
	if got["content"] != "abc" || got["name"] != "Facility Specification (Hebrew)" {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestDocumentErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		call    call
		status  int
		error   string
	}{
		{"unknown read", h.GetDocument, call{method: http.MethodGet, target: "/api/specs?doc=secrets"}, http.StatusBadRequest, "Invalid document ID"},
		{"missing id", h.GetDocument, call{method: http.MethodGet, target: "/api/specs"}, http.StatusBadRequest, "Invalid document ID"},
		{"unknown write", h.PutDocument, call{method: http.MethodPut, target: "/api/specs?doc=secrets", body: `{"content":"x"}`}, http.StatusBadRequest, "Invalid document ID"},
		{"non-string content", h.PutDocument, call{method: http.MethodPut, target: "/api/specs?doc=facility", body: `{"content":42}`}, http.StatusBadRequest, "Content must be a string"},
		{"null content", h.PutDocument, call{method: http.MethodPut, target: "/api/specs?doc=facility", body: `{"content":null}`}, http.StatusBadRequest, "Content must be a string"},
		{"missing file", h.GetDocument, call{method: http.MethodGet, target: "/api/specs?doc=context"}, http.StatusInternalServerError, "Failed to read AI Generation Context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.handler, tt.call)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp httpx.ErrorResponse
			decode(t, rec, &resp)
			if resp.Error != tt.error {
				t.Fatalf("expected error %q, got %q", tt.error, resp.Error)
			}
		})
	}
}

func TestContextLifecycle(t *testing.T) {
	h, _, _ := newTestHandler(t)
	params := map[string]string{"key": "design-guidelines"}

	var doc domain.ContextDocument
	rec := serve(t, h.GetContext, call{method: http.MethodGet, target: "/api/contexts/design-guidelines", session: "s1", params: params})
	decode(t, rec, &doc)
	if doc.Origin != domain.OriginDefault || doc.Content != domain.DefaultDesignGuidelines {
		t.Fatalf("expected default document, got %+v", doc)
	}

	rec = serve(t, h.SaveContext, call{method: http.MethodPut, target: "/api/contexts/design-guidelines", body: `{"content":"matte black"}`, session: "s1", params: params})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, h.GetContext, call{method: http.MethodGet, target: "/api/contexts/design-guidelines", session: "s1", params: params})
	decode(t, rec, &doc)
	if doc.Origin != domain.OriginOverride || doc.Content != "matte black" {
		t.Fatalf("expected override, got %+v", doc)
	}

	// Other sessions still see the default.
	rec = serve(t, h.GetContext, call{method: http.MethodGet, target: "/api/contexts/design-guidelines", session: "s2", params: params})
	decode(t, rec, &doc)
	if doc.Origin != domain.OriginDefault {
		t.Fatalf("override leaked across sessions: %+v", doc)
	}

	rec = serve(t, h.ResetContext, call{method: http.MethodDelete, target: "/api/contexts/design-guidelines", session: "s1", params: params})
	decode(t, rec, &doc)
	if doc.Origin != domain.OriginDefault || doc.Content == "matte black" {
		t.Fatalf("reset returned %+v", doc)
	}

	var all struct {
		Contexts []domain.ContextDocument `json:"contexts"`
	}
	rec = serve(t, h.ListContexts, call{method: http.MethodGet, target: "/api/contexts", session: "s1"})
	decode(t, rec, &all)
	if len(all.Contexts) != 3 || all.Contexts[0].Key != domain.ContextFacilitySpecs {
		t.Fatalf("unexpected contexts: %+v", all.Contexts)
	}
}

func TestContextErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.GetContext, call{method: http.MethodGet, target: "/api/contexts/weather", params: map[string]string{"key": "weather"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = serve(t, h.SaveContext, call{method: http.MethodPut, target: "/api/contexts/company-context", body: `{"content":["a"]}`, params: map[string]string{"key": "company-context"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStateRoundTrip(t *testing.T) {
	h, _, _ := newTestHandler(t)

	var state domain.StudioState
	rec := serve(t, h.GetState, call{method: http.MethodGet, target: "/api/state", session: "s1"})
	decode(t, rec, &state)
	if state.Mode != domain.ModeChat || len(state.Messages) != 1 {
		t.Fatalf("unexpected fresh state: %+v", state)
	}

	rec = serve(t, h.PutState, call{method: http.MethodPut, target: "/api/state", session: "s1",
		body: `{"apiKey":"k","messages":[{"role":"user","content":"hi"}],"history":[],"mode":"direct"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, h.GetState, call{method: http.MethodGet, target: "/api/state", session: "s1"})
	decode(t, rec, &state)
	if state.APIKey != "k" || state.Mode != domain.ModeDirect {
		t.Fatalf("state not persisted: %+v", state)
	}

	rec = serve(t, h.DeleteState, call{method: http.MethodDelete, target: "/api/state", session: "s1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestImages(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.SaveImage, call{method: http.MethodPost, target: "/api/images", body: `{"data":"data:image/png;base64,AA=="}`, session: "s1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var img domain.StoredImage
	decode(t, rec, &img)

	rec = serve(t, h.GetImage, call{method: http.MethodGet, target: "/api/images/" + img.ID, session: "s1", params: map[string]string{"id": img.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, h.GetImage, call{method: http.MethodGet, target: "/api/images/nope", session: "s1", params: map[string]string{"id": "nope"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var list struct {
		Images []domain.StoredImage `json:"images"`
	}
	rec = serve(t, h.ListImages, call{method: http.MethodGet, target: "/api/images", session: "s1"})
	decode(t, rec, &list)
	if len(list.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(list.Images))
	}

	serve(t, h.ClearImages, call{method: http.MethodDelete, target: "/api/images", session: "s1"})
	rec = serve(t, h.ListImages, call{method: http.MethodGet, target: "/api/images", session: "s1"})
	decode(t, rec, &list)
	if len(list.Images) != 0 {
		t.Fatalf("expected no images, got %d", len(list.Images))
	}
}

func TestBlueprints(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.CreateBlueprint, call{method: http.MethodPost, target: "/api/blueprints", session: "s1",
		body: `{"name":"Hatchery","url":"data:image/png;base64,AA=="}`})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var bp domain.Blueprint
	decode(t, rec, &bp)

	var list struct {
		Blueprints []domain.Blueprint `json:"blueprints"`
	}
	rec = serve(t, h.ListBlueprints, call{method: http.MethodGet, target: "/api/blueprints", session: "s1"})
	decode(t, rec, &list)
	if len(list.Blueprints) != len(domain.DefaultBlueprints)+1 || !list.Blueprints[len(list.Blueprints)-1].IsCustom {
		t.Fatalf("unexpected blueprints: %+v", list.Blueprints)
	}

	rec = serve(t, h.DeleteBlueprint, call{method: http.MethodDelete, target: "/api/blueprints/" + bp.ID, session: "s1", params: map[string]string{"id": bp.ID}})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = serve(t, h.DeleteBlueprint, call{method: http.MethodDelete, target: "/api/blueprints/" + bp.ID, session: "s1", params: map[string]string{"id": bp.ID}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListCalls(t *testing.T) {
	h, db, _ := newTestHandler(t)
	if err := db.CreateCallRecord(context.Background(), &domain.CallRecord{
		RequestID: "llm_1", SessionID: "s1", Kind: domain.CallKindImage, Model: "m",
	}); err != nil {
		t.Fatalf("CreateCallRecord failed: %v", err)
	}

	var resp struct {
		Calls []domain.CallRecord `json:"calls"`
	}
	rec := serve(t, h.ListCalls, call{method: http.MethodGet, target: "/api/calls?limit=5", session: "s1"})
	decode(t, rec, &resp)
	if len(resp.Calls) != 1 || resp.Calls[0].RequestID != "llm_1" {
		t.Fatalf("unexpected calls: %+v", resp.Calls)
	}
}

func TestPromptHelpers(t *testing.T) {
	h, _, _ := newTestHandler(t)

	var msg domain.Message
	rec := serve(t, h.InitialMessage, call{method: http.MethodGet, target: "/api/prompt/initial"})
	decode(t, rec, &msg)
	if msg.Role != domain.RoleAssistant || msg.Content == "" {
		t.Fatalf("unexpected greeting: %+v", msg)
	}

	var resp struct {
		Prompt string `json:"prompt"`
		Found  bool   `json:"found"`
	}
	rec = serve(t, h.ExtractPrompt, call{method: http.MethodPost, target: "/api/prompt/extract",
		body: `{"content":"Sure!\n---PROMPT---\nA hall at dawn\n---END---"}`})
	decode(t, rec, &resp)
	if !resp.Found || resp.Prompt != "A hall at dawn" {
		t.Fatalf("unexpected extraction: %+v", resp)
	}
}
