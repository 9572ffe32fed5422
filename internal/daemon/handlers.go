package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheus3301/eventd/internal/bus"
	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/dispatch"
	"github.com/matheus3301/eventd/internal/event"
	"github.com/matheus3301/eventd/internal/schema"
	"github.com/matheus3301/eventd/internal/transport/httpdto"
)

// handlers serves the dispatch HTTP API.
type handlers struct {
	dispatcher *dispatch.Dispatcher
	bus        *bus.Bus
	streamBuf  int
}

func (h *handlers) register(engine *gin.Engine) {
	engine.GET("/healthz", h.health)

	v1 := engine.Group("/v1")
	{
		v1.POST("/events/:kind", h.sendEvent)
		v1.POST("/events/:kind/check", h.checkEvent)
		v1.GET("/catalog", h.getCatalog)
		v1.GET("/stream", h.streamEvents)
	}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"status": "ok",
		"kinds":  h.dispatcher.Catalog().Len(),
	}))
}

// sendEvent accepts a dispatch request. An empty request body sends the
// kind bare; a JSON body is the payload. Accepted events answer 202
// with the stamped envelope.
func (h *handlers) sendEvent(c *gin.Context) {
	kind := c.Param("kind")
	payload, ok := readPayload(c)
	if !ok {
		return
	}

	var (
		evt event.Envelope
		err error
	)
	if payload == nil {
		evt, err = h.dispatcher.Send(c.Request.Context(), kind)
	} else {
		evt, err = h.dispatcher.Send(c.Request.Context(), kind, payload)
	}
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, httpdto.NewSuccessResponse(evt))
}

// checkEvent runs validation without delivering anything.
func (h *handlers) checkEvent(c *gin.Context) {
	kind := c.Param("kind")
	payload, ok := readPayload(c)
	if !ok {
		return
	}

	var err error
	if payload == nil {
		err = h.dispatcher.Check(kind)
	} else {
		err = h.dispatcher.Check(kind, payload)
	}
	if err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"kind": kind, "valid": true}))
}

func (h *handlers) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(catalog.File{
		Events: h.dispatcher.Catalog().Describe(),
	}))
}

// streamEvents serves accepted envelopes as server-sent events. The
// optional prefix query parameter narrows the stream to matching kinds.
func (h *handlers) streamEvents(c *gin.Context) {
	ch, unsub := h.bus.Subscribe(c.Query("prefix"), h.streamBuf)
	defer unsub()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	// Flush headers so clients see the stream open before the first
	// envelope arrives.
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case evt := <-ch:
			c.SSEvent("event", evt)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// readPayload decodes an optional JSON payload from the request body.
// An empty body means no payload. The bool result reports whether the
// request can proceed; on false a response was already written.
func readPayload(c *gin.Context) (any, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("reading request body: "+err.Error(), "BAD_REQUEST"))
		return nil, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("malformed JSON payload: "+err.Error(), "BAD_REQUEST"))
		return nil, false
	}
	return payload, true
}

// dispatchError maps dispatcher failures onto HTTP statuses: unknown
// kinds are 404, rejected payloads 400, sink failures 502.
func dispatchError(c *gin.Context, err error) {
	var uv *catalog.UnknownVariantError
	var ve *schema.ValidationError
	switch {
	case errors.As(err, &uv):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "UNKNOWN_KIND"))
	case errors.As(err, &ve):
		resp := httpdto.NewErrorResponse(err.Error(), "VALIDATION_FAILED")
		resp.Fields = ve.Errors
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, schema.ErrUnexpectedPayload):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "UNEXPECTED_PAYLOAD"))
	case errors.Is(err, dispatch.ErrTooManyPayloads):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "BAD_REQUEST"))
	default:
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "DELIVERY_FAILED"))
	}
}
