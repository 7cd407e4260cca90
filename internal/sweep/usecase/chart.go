package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Chart renders the first two numeric columns (by column order) as a PNG, one
// series per column plotted against row index. A lone numeric column renders
// as a bar chart instead; with none the request fails as a business error
// without touching the session.
func (u *Usecase) Chart(ctx context.Context, fileID string) (ChartResult, error) {
	if fileID == "" {
		return ChartResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	meta, table, err := u.store.GetFile(ctx, fileID)
	if err != nil {
		return ChartResult{}, mapStoreErr(err)
	}

	numeric := make([]int, 0, 2)
	for j, col := range table.Columns {
		if col.Kind == entity.ColumnKindNumeric {
			numeric = append(numeric, j)
		}
		if len(numeric) == 2 {
			break
		}
	}
	if len(numeric) == 0 {
		return ChartResult{}, pkgerror.NewBusiness("table has no numeric columns to visualize", pkgerror.CodeInvalidInput)
	}

	rows := table.Rows
	if len(rows) > u.limits.MaxChartRows {
		rows = rows[:u.limits.MaxChartRows]
	}

	if len(numeric) == 1 {
		name := table.Columns[numeric[0]].Name
		png, err := renderBars(meta.Name, rows, numeric[0])
		if err != nil {
			return ChartResult{}, err
		}
		return ChartResult{FileID: fileID, Columns: []string{name}, PNG: png}, nil
	}

	names := make([]string, 0, len(numeric))
	chartSeries := make([]chart.Series, 0, len(numeric))
	for _, j := range numeric {
		xs, ys := columnPoints(rows, j)
		if len(xs) == 0 {
			continue
		}
		// go-chart cannot compute a range from a single point
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}

		names = append(names, table.Columns[j].Name)
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			Name:    table.Columns[j].Name,
			XValues: xs,
			YValues: ys,
		})
	}
	if len(chartSeries) == 0 {
		return ChartResult{}, pkgerror.NewBusiness("numeric columns hold no values to visualize", pkgerror.CodeInvalidInput)
	}

	graph := chart.Chart{
		Title: meta.Name,
		XAxis: chart.XAxis{
			Name: "row",
		},
		Series: chartSeries,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return ChartResult{}, pkgerror.NewServer(fmt.Errorf("render chart: %w", err))
	}

	return ChartResult{FileID: fileID, Columns: names, PNG: buf.Bytes()}, nil
}

// renderBars draws one bar per row for a lone numeric column. The Y range is
// set explicitly because go-chart cannot derive a range from equal values.
func renderBars(title string, rows [][]entity.Cell, col int) ([]byte, error) {
	xs, ys := columnPoints(rows, col)
	if len(ys) == 0 {
		return nil, pkgerror.NewBusiness("numeric columns hold no values to visualize", pkgerror.CodeInvalidInput)
	}

	bars := make([]chart.Value, 0, len(ys))
	min, max := 0.0, ys[0]
	for i, y := range ys {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
		bars = append(bars, chart.Value{
			Value: y,
			Label: strconv.Itoa(int(xs[i])),
		})
	}
	if max <= min {
		max = min + 1
	}

	graph := chart.BarChart{
		Title: title,
		Bars:  bars,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: min, Max: max},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, pkgerror.NewServer(fmt.Errorf("render chart: %w", err))
	}
	return buf.Bytes(), nil
}

func columnPoints(rows [][]entity.Cell, col int) ([]float64, []float64) {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))

	for i, row := range rows {
		if row[col].Missing {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col].Value), 64)
		if err != nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}

	return xs, ys
}
