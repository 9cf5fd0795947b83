package httpapi

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

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theendpage/go-farewell-backend/internal/config"
	"github.com/theendpage/go-farewell-backend/internal/repo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type cannedGenerator struct{ text string }

func (g cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.EnsureFallbackUser(context.Background(), db, 2); err != nil {
		t.Fatalf("seed fallback user: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{
		GinMode:        gin.TestMode,
		APIBasePath:    "/",
		UploadDir:      t.TempDir(),
		FallbackUserID: 2,
	}

	r := gin.New()
	RegisterRoutes(r, db, cannedGenerator{text: "Adieu à tous."}, cfg)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUnknownRoute_ErrorEnvelope(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/generation/post", nil)
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

// TestGenerationVoteFlow exercises the whole pipeline end to end: generate a
// farewell, find its response, vote on it twice, and read the tally.
func TestGenerationVoteFlow(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("scenario", "leaving my job")
	_ = mw.WriteField("tone", "dramatic")
	_ = mw.WriteField("message", "after five years it is time to go")
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/generation/post", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("generation status = %d, body = %s", w.Code, w.Body.String())
	}

	var gen struct {
		IDUser   uint `json:"idUser"`
		IDPrompt uint `json:"idPrompt"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &gen); err != nil {
		t.Fatalf("decode generation: %v", err)
	}
	if gen.IDPrompt == 0 || gen.IDUser != 2 {
		t.Fatalf("generation envelope = %+v", gen)
	}

	// The generated response is listed under its prompt.
	w = httptest.NewRecorder()
	listReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/reponses?prompt=%d", gen.IDPrompt), nil)
	listReq.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, listReq)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var items []struct {
		ID      uint            `json:"id"`
		Reponse json.RawMessage `json:"reponse"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("responses = %d, want 1", len(items))
	}
	if string(items[0].Reponse) != `"Adieu à tous."` {
		t.Fatalf("stored farewell = %s", items[0].Reponse)
	}

	// Two votes: +1 default and an explicit -1.
	for _, body := range []string{
		fmt.Sprintf(`{"reponseId": %d}`, items[0].ID),
		fmt.Sprintf(`{"reponseId": %d, "valeur": -1}`, items[0].ID),
	} {
		w = httptest.NewRecorder()
		voteReq := httptest.NewRequest(http.MethodPost, "/votes", strings.NewReader(body))
		voteReq.Header.Set("Content-Type", "application/json")
		voteReq.Header.Set("Accept-Encoding", "identity")
		r.ServeHTTP(w, voteReq)
		if w.Code != http.StatusCreated {
			t.Fatalf("vote status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	w = httptest.NewRecorder()
	tallyReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/votes/count/%d", items[0].ID), nil)
	tallyReq.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, tallyReq)
	if w.Code != http.StatusOK {
		t.Fatalf("tally status = %d", w.Code)
	}
	var tally struct {
		ReponseID string `json:"reponseId"`
		Total     int64  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tally); err != nil {
		t.Fatalf("decode tally: %v", err)
	}
	if tally.Total != 0 {
		t.Fatalf("tally = %d, want 0 (+1 then -1)", tally.Total)
	}
}
