package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datalens/domain/table"
	"datalens/internal/analysis"
	"datalens/internal/errors"
)

// loadTable resolves the dataset in the path and parses its file,
// responding with the mapped error itself when that fails
func (s *Server) loadTable(c *gin.Context) (*table.Table, bool) {
	id, err := datasetID(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	tbl, err := s.datasets.LoadTable(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return tbl, true
}

func (s *Server) handleStatistics() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		includeDistributions := c.DefaultQuery("include_distributions", "true") == "true"

		result, err := analysis.DescriptiveStatistics(tbl, includeDistributions)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleCorrelation() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		method := c.DefaultQuery("method", analysis.MethodPearson)

		result, err := analysis.CorrelationMatrix(tbl, method)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleOutliers() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		method := c.DefaultQuery("method", analysis.MethodIQR)

		threshold := analysis.DefaultIQRThreshold
		if method == analysis.MethodZScore {
			threshold = analysis.DefaultZScoreThreshold
		}
		if raw := c.Query("threshold"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				respondError(c, errors.ValidationError("threshold must be a number"))
				return
			}
			threshold = v
		}

		result, err := analysis.DetectOutliers(tbl, method, threshold)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleTrends() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		result, err := analysis.AnalyzeTrends(tbl, c.Query("date_column"), c.Query("value_column"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleSummary() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		result, err := analysis.Summarize(tbl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
