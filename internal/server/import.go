package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ImportCSV accepts either a multipart upload under the "file" field or a
// raw CSV request body.
func (s *Server) ImportCSV(c *gin.Context) {
	reader := c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		defer f.Close()
		reader = f
	}

	summary, err := s.importSvc.ImportCSV(c.Request.Context(), reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
