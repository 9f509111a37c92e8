package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datalens/domain/core"
	"datalens/internal/analysis"
	"datalens/internal/errors"
)

type renameDatasetRequest struct {
	Filename string `json:"filename"`
}

// datasetID validates the :id path parameter
func datasetID(c *gin.Context) (core.ID, error) {
	id, ok := core.ParseID(c.Param("id"))
	if !ok {
		return "", errors.ValidationError("invalid dataset id")
	}
	return id, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (s *Server) handleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, errors.ValidationError("multipart field \"file\" is required"))
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			respondError(c, errors.Wrap(err, "failed to open uploaded file"))
			return
		}
		defer f.Close()

		ds, err := s.datasets.Upload(c.Request.Context(), currentUser(c).ID, fileHeader.Filename, fileHeader.Size, f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ds)
	}
}

func (s *Server) handleListDatasets() gin.HandlerFunc {
	return func(c *gin.Context) {
		skip := intQuery(c, "skip", 0)
		limit := intQuery(c, "limit", 0)

		datasets, err := s.datasets.List(c.Request.Context(), currentUser(c).ID, skip, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"datasets": datasets,
			"count":    len(datasets),
		})
	}
}

func (s *Server) handleGetDataset() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		ds, err := s.datasets.Resolve(c.Request.Context(), id, currentUser(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ds)
	}
}

func (s *Server) handleRenameDataset() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req renameDatasetRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		ds, err := s.datasets.Rename(c.Request.Context(), id, currentUser(c).ID, req.Filename)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ds)
	}
}

func (s *Server) handleDeleteDataset() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.datasets.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "dataset deleted"})
	}
}

func (s *Server) handlePreview() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		preview, err := s.datasets.Preview(c.Request.Context(), id, currentUser(c).ID, intQuery(c, "rows", 0))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}

func (s *Server) handleDatasetInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		tbl, err := s.datasets.LoadTable(c.Request.Context(), id, currentUser(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, analysis.TableInfo(tbl))
	}
}
