package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) createFile(c *gin.Context) {
	var in models.File
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	f, err := s.files.Create(c.Request.Context(), identity(c), &in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *HTTPServer) fetchFile(c *gin.Context) {
	f, err := s.files.Fetch(c.Request.Context(), identity(c), c.Param("file_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *HTTPServer) listFiles(c *gin.Context) {
	list, err := s.files.List(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) editFile(c *gin.Context) {
	var patch models.FilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	f, err := s.files.Edit(c.Request.Context(), identity(c), &patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

type deleteRequest struct {
	FileID string `json:"file_id"`
}

// deleteFile takes the id from the path or, for DELETE /file, from a JSON
// body. A file that is already gone counts as deleted.
func (s *HTTPServer) deleteFile(c *gin.Context) {
	fileID := c.Param("file_id")
	if fileID == "" {
		var req deleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		fileID = req.FileID
	}

	err := s.files.Delete(c.Request.Context(), identity(c), fileID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"status": "already deleted"})
	case err != nil:
		s.writeError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func (s *HTTPServer) createAlbum(c *gin.Context) {
	var in models.Album
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	a, err := s.albums.CreateAlbum(c.Request.Context(), identity(c), &in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *HTTPServer) fetchAlbum(c *gin.Context) {
	a, err := s.albums.FetchAlbum(c.Request.Context(), identity(c), c.Param("album_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *HTTPServer) editAlbum(c *gin.Context) {
	var patch models.AlbumPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	a, err := s.albums.EditAlbum(c.Request.Context(), identity(c), &patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *HTTPServer) deleteAlbum(c *gin.Context) {
	if err := s.albums.DeleteAlbum(c.Request.Context(), identity(c), c.Param("album_id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
