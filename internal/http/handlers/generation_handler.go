// Generation HTTP handlers.
//
// This file exposes the farewell-generation endpoints:
//   - POST /generation/post  (multipart: generate and persist a farewell)
//   - PUT  /generation/{id}  (partial prompt update)
//
// Handlers are transport-thin: they validate and normalize input, delegate
// to application services, and translate service errors into HTTP results.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/genai"
	"github.com/theendpage/go-farewell-backend/internal/services"
	"github.com/theendpage/go-farewell-backend/internal/sysutil"
	"github.com/theendpage/go-farewell-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// GenerationService defines the generation pipeline consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type GenerationService interface {
	// Generate validates input, produces farewell text, and persists the
	// prompt/response pair.
	Generate(ctx context.Context, in services.GenerationInput) (*domain.Prompt, *domain.Response, error)
	// Modify patches an existing prompt; absent fields keep prior values.
	Modify(ctx context.Context, actorID, id uint, upd services.PromptUpdate) (*domain.Prompt, error)
}

// ResponseService defines direct response creation and browsing.
type ResponseService interface {
	Create(ctx context.Context, actorID, promptID uint, content datatypes.JSON) (*domain.Response, error)
	List(ctx context.Context, promptID *uint) ([]domain.Response, error)
	Get(ctx context.Context, id uint) (*domain.Response, error)
}

// VoteService defines vote casting, browsing, deletion, and tallying.
type VoteService interface {
	Cast(ctx context.Context, responseID uint, value int) (*domain.Vote, error)
	List(ctx context.Context) ([]domain.Vote, error)
	Get(ctx context.Context, id uint) (*domain.Vote, error)
	Delete(ctx context.Context, actorID, id uint) error
	Tally(ctx context.Context, responseID uint) (int64, error)
}

// UserService defines account operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Profile(ctx context.Context, id uint) (*domain.User, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for generation, responses, votes, and
// users. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	genSvc    GenerationService
	respSvc   ResponseService
	voteSvc   VoteService
	userSvc   UserService
	uploadDir string
}

// New constructs a Handlers instance bound to the given services. uploadDir
// is where multipart image/background files are stored.
func New(genSvc GenerationService, respSvc ResponseService, voteSvc VoteService, userSvc UserService, uploadDir string) *Handlers {
	return &Handlers{
		genSvc:    genSvc,
		respSvc:   respSvc,
		voteSvc:   voteSvc,
		userSvc:   userSvc,
		uploadDir: uploadDir,
	}
}

// actorID extracts the acting user id from the X-User-ID header; 0 when
// absent or non-numeric. Used only by the authorization boundary.
func actorID(c *gin.Context) uint {
	if c == nil || c.Request == nil {
		return 0
	}
	return utils.UintOrZero(strings.TrimSpace(c.GetHeader("X-User-ID")))
}

// pathID parses a numeric path parameter; ok is false for anything that is
// not a positive integer.
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// saveUpload stores one optional multipart file under the upload directory
// with a random name and returns the stored filename, or nil when the field
// was not sent.
func (h *Handlers) saveUpload(c *gin.Context, field string) (*string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		return nil, err
	}
	return &name, nil
}

//
// DTOs
//

// GeneratePromptResponse is the JSON envelope for a successful generation.
type GeneratePromptResponse struct {
	IDUser   uint `json:"idUser"`
	IDPrompt uint `json:"idPrompt"`
}

// ModifyPromptRequest is the JSON payload for partially updating a prompt.
// Only fields present in the body are applied; the legacy wire names are
// kept (reaction, cas, ton, nouveaudepart).
type ModifyPromptRequest struct {
	Reaction      *string `json:"reaction,omitempty"`
	Cas           *string `json:"cas,omitempty"`
	Ton           *string `json:"ton,omitempty"`
	Message       *string `json:"message,omitempty"`
	NouveauDepart *bool   `json:"nouveaudepart,omitempty"`
	IDUser        *uint   `json:"idUser,omitempty"`
}

// ModifyPromptResponse wraps the updated prompt.
type ModifyPromptResponse struct {
	Message string         `json:"message"`
	Prompt  *domain.Prompt `json:"prompt"`
}

//
// Handlers
//

// GeneratePrompt godoc
// @ID          generatePrompt
// @Summary     Generate a farewell message
// @Description Renders the instruction template, calls the hosted model, and persists the prompt with its generated response.
// @Tags        Generation
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       title       formData  string  false "Farewell title / reaction"
// @Param       scenario    formData  string  true  "Farewell scenario"
// @Param       tone        formData  string  true  "Requested tone"
// @Param       message     formData  string  true  "What the author wants to say"
// @Param       idUser      formData  int     false "Owning user id (fallback applied when absent)"
// @Param       includeGifs formData  string  false "Include GIFs on the rendered page"
// @Param       image       formData  file    false "Uploaded illustration"
// @Param       background  formData  file    false "Uploaded background"
//
// @Success     201  {object}  handlers.GeneratePromptResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing required field"
// @Failure     500  {object}  handlers.ErrorResponse "Generation or persistence failure"
// @Router      /generation/post [post]
func (h *Handlers) GeneratePrompt(c *gin.Context) {
	in := services.GenerationInput{
		Title:       c.PostForm("title"),
		Scenario:    c.PostForm("scenario"),
		Tone:        c.PostForm("tone"),
		Message:     c.PostForm("message"),
		IncludeGifs: sysutil.IsTruthy(c.PostForm("includeGifs")),
	}
	if v := strings.TrimSpace(c.PostForm("idUser")); v != "" {
		if n := utils.AtoiDefault(v, 0); n > 0 {
			id := uint(n)
			in.UserID = &id
		}
	}

	image, err := h.saveUpload(c, "image")
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store image")
		return
	}
	background, err := h.saveUpload(c, "background")
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store background")
		return
	}
	in.ImageFile = image
	in.BackgroundFile = background

	prompt, _, err := h.genSvc.Generate(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingField):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "scenario, tone, and message are required")
		case errors.Is(err, services.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message too long")
		case errors.Is(err, genai.ErrGeneration):
			fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, "could not generate the farewell message")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save the farewell message")
		}
		return
	}

	ok(c, http.StatusCreated, GeneratePromptResponse{IDUser: prompt.UserID, IDPrompt: prompt.ID})
}

// ModifyPrompt godoc
// @ID          modifyPrompt
// @Summary     Partially update a prompt
// @Description Applies only the fields present in the payload; absent fields keep their stored values.
// @Tags        Generation
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                            true "Prompt id"
// @Param       body  body  handlers.ModifyPromptRequest   true "Fields to update"
//
// @Success     200  {object}  handlers.ModifyPromptResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Prompt not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /generation/{id} [put]
func (h *Handlers) ModifyPrompt(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt id must be a positive integer")
		return
	}

	var req ModifyPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	upd := services.PromptUpdate{
		Title:      req.Reaction,
		Scenario:   req.Cas,
		Tone:       req.Ton,
		Message:    req.Message,
		FreshStart: req.NouveauDepart,
		UserID:     req.IDUser,
	}

	prompt, err := h.genSvc.Modify(c.Request.Context(), actorID(c), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPromptNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prompt not found")
		case errors.Is(err, services.ErrNotAllowed):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "operation not allowed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, ModifyPromptResponse{Message: "prompt updated", Prompt: prompt})
}
