package findash

import "errors"

var (
	// ErrEmptyDataset is returned when a computation needs at least one record.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrUnknownColumn is returned when a column name is not part of the dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownChart is returned when a chart identifier is not part of the dashboard.
	ErrUnknownChart = errors.New("unknown chart")
)
