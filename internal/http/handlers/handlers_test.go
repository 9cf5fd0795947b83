package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/genai"
	"github.com/theendpage/go-farewell-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

//
// Stub services
//

type stubGenSvc struct {
	generateIn   services.GenerationInput
	generateErr  error
	modifyUpd    services.PromptUpdate
	modifyErr    error
	prompt       *domain.Prompt
	response     *domain.Response
	generateHits int
}

func (s *stubGenSvc) Generate(ctx context.Context, in services.GenerationInput) (*domain.Prompt, *domain.Response, error) {
	s.generateHits++
	s.generateIn = in
	if s.generateErr != nil {
		return nil, nil, s.generateErr
	}
	return s.prompt, s.response, nil
}

func (s *stubGenSvc) Modify(ctx context.Context, actorID, id uint, upd services.PromptUpdate) (*domain.Prompt, error) {
	s.modifyUpd = upd
	if s.modifyErr != nil {
		return nil, s.modifyErr
	}
	return s.prompt, nil
}

type stubRespSvc struct {
	createErr error
	getErr    error
	listErr   error
	resp      *domain.Response
	items     []domain.Response
	listedPID *uint
}

func (s *stubRespSvc) Create(ctx context.Context, actorID, promptID uint, content datatypes.JSON) (*domain.Response, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.resp, nil
}

func (s *stubRespSvc) List(ctx context.Context, promptID *uint) ([]domain.Response, error) {
	s.listedPID = promptID
	return s.items, s.listErr
}

func (s *stubRespSvc) Get(ctx context.Context, id uint) (*domain.Response, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.resp, nil
}

type stubVoteSvc struct {
	castErr   error
	castValue int
	deleteErr error
	getErr    error
	vote      *domain.Vote
	items     []domain.Vote
	total     int64
}

func (s *stubVoteSvc) Cast(ctx context.Context, responseID uint, value int) (*domain.Vote, error) {
	s.castValue = value
	if s.castErr != nil {
		return nil, s.castErr
	}
	return s.vote, nil
}

func (s *stubVoteSvc) List(ctx context.Context) ([]domain.Vote, error) { return s.items, nil }

func (s *stubVoteSvc) Get(ctx context.Context, id uint) (*domain.Vote, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.vote, nil
}

func (s *stubVoteSvc) Delete(ctx context.Context, actorID, id uint) error { return s.deleteErr }

func (s *stubVoteSvc) Tally(ctx context.Context, responseID uint) (int64, error) {
	return s.total, nil
}

type stubUserSvc struct {
	registerErr error
	loginErr    error
	profileErr  error
	user        *domain.User
	token       string
}

func (s *stubUserSvc) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.user, nil
}

func (s *stubUserSvc) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.user, s.token, nil
}

func (s *stubUserSvc) Profile(ctx context.Context, id uint) (*domain.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.user, nil
}

//
// Harness
//

type testEnv struct {
	gen  *stubGenSvc
	resp *stubRespSvc
	vote *stubVoteSvc
	user *stubUserSvc
	r    *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		gen:  &stubGenSvc{},
		resp: &stubRespSvc{},
		vote: &stubVoteSvc{},
		user: &stubUserSvc{},
	}
	h := New(env.gen, env.resp, env.vote, env.user, t.TempDir())

	r := gin.New()
	r.POST("/generation/post", h.GeneratePrompt)
	r.PUT("/generation/:id", h.ModifyPrompt)
	r.POST("/reponses", h.CreateResponse)
	r.GET("/reponses", h.ListResponses)
	r.GET("/reponses/:id", h.GetResponse)
	r.POST("/votes", h.CastVote)
	r.GET("/votes", h.ListVotes)
	r.GET("/votes/count/:id", h.CountVotes)
	r.GET("/votes/:id", h.GetVote)
	r.DELETE("/votes/:id", h.DeleteVote)
	r.POST("/users/register", h.Register)
	r.POST("/users/login", h.Login)
	r.GET("/users/:id", h.GetUser)
	env.r = r
	return env
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

//
// Generation
//

func TestGeneratePrompt_Success(t *testing.T) {
	env := newEnv(t)
	env.gen.prompt = &domain.Prompt{ID: 9, UserID: 2}
	env.gen.response = &domain.Response{ID: 4, PromptID: 9}

	w := doForm(t, env.r, "/generation/post", map[string]string{
		"scenario":    "leaving my job",
		"tone":        "dramatic",
		"message":     "goodbye",
		"includeGifs": "true",
		"idUser":      "7",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var out GeneratePromptResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.IDUser != 2 || out.IDPrompt != 9 {
		t.Fatalf("envelope = %+v", out)
	}

	if !env.gen.generateIn.IncludeGifs {
		t.Fatal("includeGifs not parsed as boolean true")
	}
	if env.gen.generateIn.UserID == nil || *env.gen.generateIn.UserID != 7 {
		t.Fatalf("idUser not forwarded: %v", env.gen.generateIn.UserID)
	}
}

func TestGeneratePrompt_MissingField(t *testing.T) {
	env := newEnv(t)
	env.gen.generateErr = services.ErrMissingField

	w := doForm(t, env.r, "/generation/post", map[string]string{"tone": "calm"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var out ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != ErrCodeBadRequest {
		t.Fatalf("code = %q", out.Code)
	}
}

func TestGeneratePrompt_ProviderFailure(t *testing.T) {
	env := newEnv(t)
	env.gen.generateErr = fmt.Errorf("%w: upstream 500", genai.ErrGeneration)

	w := doForm(t, env.r, "/generation/post", map[string]string{
		"scenario": "s", "tone": "t", "message": "m",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var out ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Code != ErrCodeGenerationFailed {
		t.Fatalf("code = %q", out.Code)
	}
}

func TestGeneratePrompt_BadUserIDIgnored(t *testing.T) {
	env := newEnv(t)
	env.gen.prompt = &domain.Prompt{ID: 1, UserID: 2}
	env.gen.response = &domain.Response{ID: 1}

	w := doForm(t, env.r, "/generation/post", map[string]string{
		"scenario": "s", "tone": "t", "message": "m", "idUser": "abc",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if env.gen.generateIn.UserID != nil {
		t.Fatalf("non-numeric idUser should be dropped, got %v", *env.gen.generateIn.UserID)
	}
}

func TestModifyPrompt_ForwardsOnlyPresentFields(t *testing.T) {
	env := newEnv(t)
	env.gen.prompt = &domain.Prompt{ID: 3, Tone: "joyeux"}

	w := doJSON(t, env.r, http.MethodPut, "/generation/3", `{"ton": "joyeux", "nouveaudepart": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	upd := env.gen.modifyUpd
	if upd.Tone == nil || *upd.Tone != "joyeux" {
		t.Fatalf("tone not forwarded: %v", upd.Tone)
	}
	if upd.FreshStart == nil || *upd.FreshStart {
		t.Fatal("explicit false nouveaudepart must be forwarded as present")
	}
	if upd.Title != nil || upd.Scenario != nil || upd.Message != nil || upd.UserID != nil {
		t.Fatalf("absent fields must stay nil: %+v", upd)
	}
}

func TestModifyPrompt_NotFound(t *testing.T) {
	env := newEnv(t)
	env.gen.modifyErr = services.ErrPromptNotFound

	w := doJSON(t, env.r, http.MethodPut, "/generation/99", `{"ton": "x"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestModifyPrompt_BadID(t *testing.T) {
	env := newEnv(t)
	w := doJSON(t, env.r, http.MethodPut, "/generation/zero", `{"ton": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

//
// Responses
//

func TestCreateResponse_Success(t *testing.T) {
	env := newEnv(t)
	env.resp.resp = &domain.Response{ID: 5, PromptID: 1, Content: []byte(`"bravo"`)}

	w := doJSON(t, env.r, http.MethodPost, "/reponses", `{"reponse": "bravo", "idPrompt": 1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out CreateResponseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Reponse == nil || out.Reponse.ID != 5 {
		t.Fatalf("envelope = %+v", out)
	}
}

func TestCreateResponse_MissingPrompt(t *testing.T) {
	env := newEnv(t)
	env.resp.createErr = services.ErrPromptNotFound

	w := doJSON(t, env.r, http.MethodPost, "/reponses", `{"reponse": "x", "idPrompt": 42}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateResponse_MissingBodyFields(t *testing.T) {
	env := newEnv(t)
	w := doJSON(t, env.r, http.MethodPost, "/reponses", `{"reponse": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListResponses_PromptFilter(t *testing.T) {
	env := newEnv(t)

	w := doJSON(t, env.r, http.MethodGet, "/reponses?prompt=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.resp.listedPID == nil || *env.resp.listedPID != 3 {
		t.Fatalf("prompt filter not forwarded: %v", env.resp.listedPID)
	}

	w = doJSON(t, env.r, http.MethodGet, "/reponses?prompt=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d", w.Code)
	}
}

func TestGetResponse_NotFound(t *testing.T) {
	env := newEnv(t)
	env.resp.getErr = services.ErrResponseNotFound

	w := doJSON(t, env.r, http.MethodGet, "/reponses/9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

//
// Votes
//

func TestCastVote_DefaultsToPlusOne(t *testing.T) {
	env := newEnv(t)
	env.vote.vote = &domain.Vote{ID: 1, ResponseID: 7, Value: 1}

	w := doJSON(t, env.r, http.MethodPost, "/votes", `{"reponseId": 7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if env.vote.castValue != 1 {
		t.Fatalf("default value = %d, want 1", env.vote.castValue)
	}
}

func TestCastVote_ExplicitZero(t *testing.T) {
	env := newEnv(t)
	env.vote.vote = &domain.Vote{ID: 1, ResponseID: 7, Value: 0}

	w := doJSON(t, env.r, http.MethodPost, "/votes", `{"reponseId": 7, "valeur": 0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if env.vote.castValue != 0 {
		t.Fatalf("explicit zero forwarded as %d", env.vote.castValue)
	}
}

func TestCastVote_InvalidValue(t *testing.T) {
	env := newEnv(t)
	env.vote.castErr = services.ErrInvalidVote

	w := doJSON(t, env.r, http.MethodPost, "/votes", `{"reponseId": 7, "valeur": 5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCastVote_MissingResponse(t *testing.T) {
	env := newEnv(t)
	env.vote.castErr = services.ErrResponseNotFound

	w := doJSON(t, env.r, http.MethodPost, "/votes", `{"reponseId": 999}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDeleteVote_NotFound(t *testing.T) {
	env := newEnv(t)
	env.vote.deleteErr = services.ErrVoteNotFound

	w := doJSON(t, env.r, http.MethodDelete, "/votes/3", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCountVotes_EchoesPathParam(t *testing.T) {
	env := newEnv(t)
	env.vote.total = 4

	w := doJSON(t, env.r, http.MethodGet, "/votes/count/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out TallyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ReponseID != "7" || out.Total != 4 {
		t.Fatalf("tally = %+v", out)
	}
}

func TestCountVotes_BadID(t *testing.T) {
	env := newEnv(t)
	w := doJSON(t, env.r, http.MethodGet, "/votes/count/x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

//
// Users
//

func TestRegister_Conflict(t *testing.T) {
	env := newEnv(t)
	env.user.registerErr = services.ErrEmailTaken

	w := doJSON(t, env.r, http.MethodPost, "/users/register",
		`{"name": "A", "email": "a@example.com", "password": "longenough"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	env := newEnv(t)
	w := doJSON(t, env.r, http.MethodPost, "/users/register",
		`{"name": "A", "email": "a@example.com", "password": "short"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newEnv(t)
	env.user.loginErr = services.ErrInvalidCredentials

	w := doJSON(t, env.r, http.MethodPost, "/users/login",
		`{"email": "a@example.com", "password": "nope1234"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	env := newEnv(t)
	env.user.user = &domain.User{ID: 1, Email: "a@example.com"}
	env.user.token = "signed.jwt.token"

	w := doJSON(t, env.r, http.MethodPost, "/users/login",
		`{"email": "a@example.com", "password": "correct-horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Token != "signed.jwt.token" || out.User == nil || out.User.ID != 1 {
		t.Fatalf("login envelope = %+v", out)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	env := newEnv(t)
	env.user.profileErr = services.ErrUserNotFound

	w := doJSON(t, env.r, http.MethodGet, "/users/404", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
