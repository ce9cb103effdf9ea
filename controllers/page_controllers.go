package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// SocketURLPlaceholder is replaced in the client page with the socket address.
const SocketURLPlaceholder = "<WSS_URL_PLACEHOLDER>"

type PageController struct {
	page []byte
}

// NewPageController reads the client page once and bakes in the socket URL.
func NewPageController(path, socketURL string) (*PageController, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client page: %w", err)
	}
	return &PageController{
		page: bytes.ReplaceAll(raw, []byte(SocketURLPlaceholder), []byte(socketURL)),
	}, nil
}

func (pc *PageController) ServeIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", pc.page)
}
