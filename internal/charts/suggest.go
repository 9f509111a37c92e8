package charts

import (
	"datalens/domain/table"
	"datalens/internal/analysis"
	"datalens/internal/errors"
)

// Suggest recommends a chart type for one or two columns. The
// decision table is checked in order; anything it does not cover
// falls back to a bar chart flagged as not recommended.
func Suggest(t *table.Table, xColumn, yColumn string) (map[string]interface{}, error) {
	xCol, ok := t.Column(xColumn)
	if !ok {
		return nil, errors.ColumnNotFound(xColumn)
	}
	xClass := analysis.ClassifyColumn(xCol)

	if yColumn == "" {
		if xClass == analysis.ClassNumeric {
			return suggestion("histogram", "Single numeric column - distribution analysis", true), nil
		}
		return suggestion("pie", "Single categorical column - proportion analysis", true), nil
	}

	yCol, ok := t.Column(yColumn)
	if !ok {
		return nil, errors.ColumnNotFound(yColumn)
	}
	yClass := analysis.ClassifyColumn(yCol)

	switch {
	case xClass == analysis.ClassTemporal && yClass == analysis.ClassNumeric:
		return suggestion("line", "Time series data - trend analysis", true), nil
	case xClass != analysis.ClassNumeric && yClass == analysis.ClassNumeric:
		return suggestion("bar", "Categorical vs numeric - comparison analysis", true), nil
	case xClass == analysis.ClassNumeric && yClass == analysis.ClassNumeric:
		return suggestion("scatter", "Two numeric columns - correlation analysis", true), nil
	default:
		return suggestion("bar", "Default choice for mixed types", false), nil
	}
}

func suggestion(chartType, reasoning string, recommended bool) map[string]interface{} {
	return map[string]interface{}{
		"chart_type":  chartType,
		"reasoning":   reasoning,
		"recommended": recommended,
	}
}
