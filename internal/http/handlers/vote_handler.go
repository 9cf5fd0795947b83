// Vote HTTP handlers.
//
// This file exposes the vote endpoints:
//   - POST   /votes            (cast a vote on a response)
//   - GET    /votes            (list all votes, response nested)
//   - GET    /votes/{id}       (fetch one vote)
//   - DELETE /votes/{id}       (remove a vote)
//   - GET    /votes/count/{id} (tally for a response)
//
// Legacy wire names are preserved: "reponseId" and "valeur".
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/services"
)

// CastVoteRequest is the JSON payload for casting a vote. Valeur defaults
// to +1 when absent and must be -1, 0, or 1 when present.
type CastVoteRequest struct {
	ReponseID uint `json:"reponseId" binding:"required"`
	Valeur    *int `json:"valeur,omitempty"`
}

// CastVoteResponse wraps a newly created vote.
type CastVoteResponse struct {
	Message string       `json:"message"`
	Vote    *domain.Vote `json:"vote"`
}

// DeleteVoteResponse acknowledges a deletion.
type DeleteVoteResponse struct {
	Message string `json:"message"`
}

// TallyResponse carries the summed vote values for a response. ReponseID
// echoes the raw path parameter, matching the legacy API shape.
type TallyResponse struct {
	ReponseID string `json:"reponseId"`
	Total     int64  `json:"total"`
}

// CastVote godoc
// @ID          castVote
// @Summary     Cast a vote
// @Description Records a -1, 0, or +1 vote on an existing response. Repeat votes are allowed.
// @Tags        Votes
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CastVoteRequest  true "Vote payload"
//
// @Success     201  {object}  handlers.CastVoteResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid vote value"
// @Failure     404  {object}  handlers.ErrorResponse "Response not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /votes [post]
func (h *Handlers) CastVote(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reponseId is required")
		return
	}
	value := 1
	if req.Valeur != nil {
		value = *req.Valeur
	}

	vote, err := h.voteSvc.Cast(c.Request.Context(), req.ReponseID, value)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidVote):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "valeur must be -1, 0, or 1")
		case errors.Is(err, services.ErrResponseNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "response not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, CastVoteResponse{Message: "vote recorded", Vote: vote})
}

// ListVotes godoc
// @ID          listVotes
// @Summary     List votes
// @Description Returns all votes, each with its response nested.
// @Tags        Votes
// @Produce     json
//
// @Success     200  {array}   domain.Vote
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /votes [get]
func (h *Handlers) ListVotes(c *gin.Context) {
	items, err := h.voteSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetVote godoc
// @ID          getVote
// @Summary     Fetch a vote
// @Tags        Votes
// @Produce     json
//
// @Param       id  path  int  true "Vote id"
//
// @Success     200  {object}  domain.Vote
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Vote not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /votes/{id} [get]
func (h *Handlers) GetVote(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "vote id must be a positive integer")
		return
	}

	vote, err := h.voteSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrVoteNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "vote not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, vote)
}

// DeleteVote godoc
// @ID          deleteVote
// @Summary     Delete a vote
// @Tags        Votes
// @Produce     json
//
// @Param       id  path  int  true "Vote id"
//
// @Success     200  {object}  handlers.DeleteVoteResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Vote not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /votes/{id} [delete]
func (h *Handlers) DeleteVote(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "vote id must be a positive integer")
		return
	}

	if err := h.voteSvc.Delete(c.Request.Context(), actorID(c), id); err != nil {
		switch {
		case errors.Is(err, services.ErrVoteNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "vote not found")
		case errors.Is(err, services.ErrNotAllowed):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "operation not allowed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, DeleteVoteResponse{Message: "vote deleted"})
}

// CountVotes godoc
// @ID          countVotes
// @Summary     Tally votes for a response
// @Description Returns the sum of vote values for a response, 0 when none exist.
// @Tags        Votes
// @Produce     json
//
// @Param       id  path  int  true "Response id"
//
// @Success     200  {object}  handlers.TallyResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /votes/count/{id} [get]
func (h *Handlers) CountVotes(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "response id must be a positive integer")
		return
	}

	total, err := h.voteSvc.Tally(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, TallyResponse{ReponseID: c.Param("id"), Total: total})
}
