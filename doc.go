// Package findash provides the types and computations behind a financial
// dashboard built over a synthetic daily dataset.
//
// A Dataset is a chronological table of daily Records: revenue, profit, cash
// flows, financial ratios and one expense amount per category. Generator
// produces such datasets from a seed, and the CSV and XLSX codecs read and
// write them.
//
// NewDashboard derives every view displayed to the user from a dataset: the
// KPIs, the rolling, monthly and per category charts, and the table of the
// latest records. Store holds the current dataset and its dashboard, and
// notifies subscribers each time the dataset is replaced.
//
// This package serves as the foundational logic for the `fdash` command-line
// tool and its HTTP server.
package findash
