package handlers

import (
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/extract"
	"github.com/gin-gonic/gin"
)

type extractRequest struct {
	Text string `json:"text"`
}

// Extract turns a free-form product description into form fields.
func Extract(c *gin.Context) {
	var req extractRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := extract.Extract(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
