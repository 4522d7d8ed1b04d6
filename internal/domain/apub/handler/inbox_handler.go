package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fedforum/internal/domain/apub/model"
	"fedforum/internal/domain/apub/service"
	"fedforum/pkg/metrics"
	"fedforum/pkg/response"

	"github.com/gin-gonic/gin"
)

type InboxHandler struct {
	dispatcher *service.Dispatcher
	collector  *metrics.Collector
}

func NewInboxHandler(dispatcher *service.Dispatcher, collector *metrics.Collector) *InboxHandler {
	return &InboxHandler{dispatcher: dispatcher, collector: collector}
}

// Receive handles an inbound activity from a federated peer. Transport
// signature verification has already happened upstream; here the payload
// is parsed, verified against domain invariants, and only then applied.
func (h *InboxHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "could not read body")
		return
	}

	h.collector.ActivityReceived(peekType(raw))

	activity, err := h.dispatcher.Parse(raw)
	if err != nil {
		h.rejected(c, raw, err)
		return
	}

	ctx := c.Request.Context()
	if err := activity.Verify(ctx); err != nil {
		h.rejected(c, raw, err)
		return
	}
	if err := activity.Receive(ctx); err != nil {
		h.rejected(c, raw, err)
		return
	}

	response.Success(c, nil)
}

func (h *InboxHandler) rejected(c *gin.Context, raw []byte, err error) {
	kind := peekType(raw)
	switch {
	case errors.Is(err, service.ErrUnknownActivity):
		h.collector.ActivityRejected(kind, "unknown_type")
		response.Error(c, http.StatusBadRequest, response.ErrUnknownActivity, err.Error())
	case errors.Is(err, model.ErrMalformedObject):
		h.collector.ActivityRejected(kind, "malformed")
		response.Error(c, http.StatusBadRequest, response.ErrMalformedObject, err.Error())
	case errors.Is(err, model.ErrMissingCreator):
		h.collector.ActivityRejected(kind, "missing_creator")
		response.Error(c, http.StatusBadRequest, response.ErrMissingCreator, err.Error())
	case errors.Is(err, service.ErrNoCommunityFound):
		h.collector.ActivityRejected(kind, "no_community")
		response.Error(c, http.StatusBadRequest, response.ErrNoCommunityFound, err.Error())
	case errors.Is(err, service.ErrAudienceMismatch):
		h.collector.ActivityRejected(kind, "audience_mismatch")
		response.Error(c, http.StatusBadRequest, response.ErrAudienceMismatch, err.Error())
	case errors.Is(err, service.ErrDereferenceFailed):
		h.collector.ActivityRejected(kind, "dereference_failed")
		response.Error(c, http.StatusBadGateway, response.ErrDereferenceFailed, err.Error())
	default:
		h.collector.ActivityRejected(kind, "internal")
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}

// peekType extracts the discriminant for metrics without full parsing.
func peekType(raw []byte) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Type == "" {
		return "unknown"
	}
	return probe.Type
}
