// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
)

// CSVHeader is the header row written by WriteCSV. The first six columns
// match the results.csv layout of the experiment scripts.
var CSVHeader = []string{
	"domain", "problem", "planner", "success", "time_s", "plan_len",
	"status", "nodes_expanded", "rollouts", "id",
}

// WriteCSV writes records as CSV with CSVHeader.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Domain,
			rec.Task,
			rec.Planner,
			strconv.FormatBool(rec.Success),
			strconv.FormatFloat(rec.Duration.Seconds(), 'f', 3, 64),
			strconv.Itoa(rec.PlanLength),
			rec.Status,
			strconv.Itoa(rec.NodesExpanded),
			strconv.Itoa(rec.Rollouts),
			rec.ID.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary aggregates the records of one planner. Plan length statistics
// cover solved runs only.
type Summary struct {
	Planner        string  `json:"planner"`
	Runs           int     `json:"runs"`
	Solved         int     `json:"solved"`
	SuccessRate    float64 `json:"success_rate"`
	MeanTime       float64 `json:"mean_time_s"`
	StdDevTime     float64 `json:"stddev_time_s"`
	MeanPlanLength float64 `json:"mean_plan_len"`
	StdDevPlanLen  float64 `json:"stddev_plan_len"`
	MedianPlanLen  float64 `json:"median_plan_len"`
}

// Summarize groups records by planner, sorted by planner name.
func Summarize(records []Record) []Summary {
	type acc struct {
		times   []float64
		lengths []float64
		solved  int
	}
	byPlanner := make(map[string]*acc)
	for _, rec := range records {
		a, ok := byPlanner[rec.Planner]
		if !ok {
			a = &acc{}
			byPlanner[rec.Planner] = a
		}
		a.times = append(a.times, rec.Duration.Seconds())
		if rec.Success {
			a.solved++
			a.lengths = append(a.lengths, float64(rec.PlanLength))
		}
	}

	out := make([]Summary, 0, len(byPlanner))
	for planner, a := range byPlanner {
		s := Summary{
			Planner:     planner,
			Runs:        len(a.times),
			Solved:      a.solved,
			SuccessRate: float64(a.solved) / float64(len(a.times)),
		}
		s.MeanTime, s.StdDevTime = meanStdDev(a.times)
		s.MeanPlanLength, s.StdDevPlanLen = meanStdDev(a.lengths)
		if len(a.lengths) > 0 {
			sort.Float64s(a.lengths)
			s.MedianPlanLen = stat.Quantile(0.5, stat.Empirical, a.lengths, nil)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Planner < out[j].Planner })
	return out
}

// meanStdDev returns the mean and sample standard deviation of x. Both
// are 0 for an empty sample; the deviation is 0 for a single value.
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// WriteSummary writes summaries as an aligned table.
func WriteSummary(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "planner\truns\tsolved\tsuccess\tmean_time_s\tstd_time_s\tmean_plan_len\tstd_plan_len\tmedian_plan_len")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.3f\t%.3f\t%.2f\t%.2f\t%.1f\n",
			s.Planner, s.Runs, s.Solved, s.SuccessRate,
			s.MeanTime, s.StdDevTime, s.MeanPlanLength, s.StdDevPlanLen, s.MedianPlanLen)
	}
	return tw.Flush()
}
