package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries the continuation of a scan step.
type Meta struct {
	Cursor   string `json:"cursor"`
	Finished bool   `json:"finished"`
	Count    int    `json:"count"`
}

// RespondWithError writes err as an ErrorResponse with its HTTP status.
// Errors outside the taxonomy become INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	c.JSON(errors.Render(err))
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}
