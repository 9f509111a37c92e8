package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// Outlier detection methods accepted by DetectOutliers
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
)

// Default thresholds per method; the caller-supplied value always wins
const (
	DefaultIQRThreshold    = 1.5
	DefaultZScoreThreshold = 3.0
)

// maxReportedOutliers caps the flagged-value list in the payload.
// Count and percentage always reflect the full total.
const maxReportedOutliers = 100

// OutlierRecord is the per-column outlier report
type OutlierRecord struct {
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	Values     []float64 `json:"values"`
	MinOutlier *float64  `json:"min_outlier"`
	MaxOutlier *float64  `json:"max_outlier"`
	Method     string    `json:"method"`
	Threshold  float64   `json:"threshold"`
	LowerBound *float64  `json:"lower_bound,omitempty"`
	UpperBound *float64  `json:"upper_bound,omitempty"`
}

// DetectOutliers flags extreme values per numeric column. The method
// is validated once up front; an unknown method fails the whole
// request rather than silently skipping columns.
func DetectOutliers(t *table.Table, method string, threshold float64) (map[string]OutlierRecord, error) {
	switch method {
	case MethodIQR, MethodZScore:
	default:
		return nil, errors.UnsupportedMethod("outlier detection", method)
	}
	if threshold <= 0 {
		return nil, errors.ValidationError("outlier threshold must be positive")
	}

	numericCols := NumericColumns(t)
	if len(numericCols) == 0 {
		return nil, errors.NoApplicableColumns("no numeric columns found in dataset")
	}

	result := make(map[string]OutlierRecord)
	for _, col := range numericCols {
		data := col.Numbers()
		if len(data) == 0 {
			continue
		}

		record := OutlierRecord{Method: method, Threshold: threshold}

		var flagged []float64
		switch method {
		case MethodIQR:
			q1 := quantile(data, 0.25)
			q3 := quantile(data, 0.75)
			iqr := q3 - q1
			lower := q1 - threshold*iqr
			upper := q3 + threshold*iqr
			record.LowerBound = &lower
			record.UpperBound = &upper
			for _, v := range data {
				if v < lower || v > upper {
					flagged = append(flagged, v)
				}
			}
		case MethodZScore:
			mean, _ := stats.Mean(data)
			std, _ := stats.StandardDeviation(data)
			if std > 0 {
				for _, v := range data {
					if math.Abs((v-mean)/std) > threshold {
						flagged = append(flagged, v)
					}
				}
			}
		}

		record.Count = len(flagged)
		record.Percentage = float64(len(flagged)) / float64(len(data)) * 100
		if len(flagged) > 0 {
			min, _ := stats.Min(flagged)
			max, _ := stats.Max(flagged)
			record.MinOutlier = &min
			record.MaxOutlier = &max
		}
		if len(flagged) > maxReportedOutliers {
			flagged = flagged[:maxReportedOutliers]
		}
		if flagged == nil {
			flagged = []float64{}
		}
		record.Values = flagged

		result[col.Name] = record
	}

	return result, nil
}
