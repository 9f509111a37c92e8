package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/internal/charts"
	"datalens/internal/errors"
)

type barChartRequest struct {
	XColumn     string `json:"x_column"`
	YColumn     string `json:"y_column"`
	Aggregation string `json:"aggregation"`
	Limit       int    `json:"limit"`
}

type lineChartRequest struct {
	XColumn  string   `json:"x_column"`
	YColumns []string `json:"y_columns"`
	SortByX  *bool    `json:"sort_by_x"`
}

type pieChartRequest struct {
	CategoryColumn string `json:"category_column"`
	ValueColumn    string `json:"value_column"`
	TopN           int    `json:"top_n"`
}

type scatterChartRequest struct {
	XColumn     string `json:"x_column"`
	YColumn     string `json:"y_column"`
	ColorColumn string `json:"color_column"`
	SizeColumn  string `json:"size_column"`
	SampleSize  int    `json:"sample_size"`
}

type histogramChartRequest struct {
	Column string `json:"column"`
	Bins   int    `json:"bins"`
}

func (s *Server) handleBarChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		var req barChartRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if req.Aggregation == "" {
			req.Aggregation = charts.AggSum
		}
		if req.Limit == 0 {
			req.Limit = charts.DefaultBarLimit
		}

		result, err := charts.Bar(tbl, req.XColumn, req.YColumn, req.Aggregation, req.Limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleLineChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		var req lineChartRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if len(req.YColumns) == 0 {
			respondError(c, errors.ValidationError("y_columns must name at least one column"))
			return
		}
		sortByX := true
		if req.SortByX != nil {
			sortByX = *req.SortByX
		}

		result, err := charts.Line(tbl, req.XColumn, req.YColumns, sortByX)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handlePieChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		var req pieChartRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if req.TopN == 0 {
			req.TopN = charts.DefaultPieTopN
		}

		result, err := charts.Pie(tbl, req.CategoryColumn, req.ValueColumn, req.TopN)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleScatterChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		var req scatterChartRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if req.SampleSize == 0 {
			req.SampleSize = charts.DefaultScatterSample
		}

		result, err := charts.Scatter(tbl, req.XColumn, req.YColumn, req.ColorColumn, req.SizeColumn, req.SampleSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleHistogramChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		var req histogramChartRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if req.Bins == 0 {
			req.Bins = charts.DefaultHistogramBins
		}
		if req.Bins < 1 || req.Bins > 100 {
			respondError(c, errors.ValidationError("bins must be between 1 and 100"))
			return
		}

		result, err := charts.Histogram(tbl, req.Column, req.Bins)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleHeatmapChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		result, err := charts.Heatmap(tbl, c.DefaultQuery("method", "correlation"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleSuggestChart() gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, ok := s.loadTable(c)
		if !ok {
			return
		}
		xColumn := c.Query("x_column")
		if xColumn == "" {
			respondError(c, errors.ValidationError("x_column is required"))
			return
		}

		result, err := charts.Suggest(tbl, xColumn, c.Query("y_column"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
