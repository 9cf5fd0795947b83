// Response HTTP handlers.
//
// This file exposes the community response endpoints:
//   - POST /reponses       (create a response against an existing prompt)
//   - GET  /reponses       (list, optional ?prompt= filter, prompt nested)
//   - GET  /reponses/{id}  (fetch one, prompt nested)
//
// The legacy wire vocabulary is preserved: the text field is "reponse" and
// the foreign key is "idPrompt".
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/services"
)

// CreateResponseRequest is the JSON payload for creating a response. The
// reponse field accepts any JSON document (usually a string).
type CreateResponseRequest struct {
	Reponse  json.RawMessage `json:"reponse" binding:"required"`
	IDPrompt uint            `json:"idPrompt" binding:"required"`
}

// CreateResponseResponse wraps a newly created response.
type CreateResponseResponse struct {
	Message string           `json:"message"`
	Reponse *domain.Response `json:"reponse"`
}

// CreateResponse godoc
// @ID          createResponse
// @Summary     Create a response
// @Description Stores a response for an existing prompt.
// @Tags        Responses
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateResponseRequest  true "Response payload"
//
// @Success     201  {object}  handlers.CreateResponseResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Prompt not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reponses [post]
func (h *Handlers) CreateResponse(c *gin.Context) {
	var req CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reponse and idPrompt are required")
		return
	}

	resp, err := h.respSvc.Create(c.Request.Context(), actorID(c), req.IDPrompt, datatypes.JSON(req.Reponse))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPromptNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prompt not found")
		case errors.Is(err, services.ErrNotAllowed):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "operation not allowed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, CreateResponseResponse{Message: "response created", Reponse: resp})
}

// ListResponses godoc
// @ID          listResponses
// @Summary     List responses
// @Description Returns all responses, each with its prompt nested. The optional prompt query parameter narrows the list to one prompt.
// @Tags        Responses
// @Produce     json
//
// @Param       prompt  query  int  false "Filter by prompt id"
//
// @Success     200  {array}   domain.Response
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reponses [get]
func (h *Handlers) ListResponses(c *gin.Context) {
	var promptID *uint
	if v := strings.TrimSpace(c.Query("prompt")); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt must be a positive integer")
			return
		}
		id := uint(n)
		promptID = &id
	}

	items, err := h.respSvc.List(c.Request.Context(), promptID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetResponse godoc
// @ID          getResponse
// @Summary     Fetch a response
// @Description Returns one response with its prompt nested.
// @Tags        Responses
// @Produce     json
//
// @Param       id  path  int  true "Response id"
//
// @Success     200  {object}  domain.Response
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Response not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reponses/{id} [get]
func (h *Handlers) GetResponse(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "response id must be a positive integer")
		return
	}

	resp, err := h.respSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrResponseNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "response not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, resp)
}
