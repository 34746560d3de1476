package rmi

import "strconv"

// itoa and formatFloat centralize the string encodings used by
// TrainedRMI.MarshalJSON's validation-result-file shape (spec.md §6:
// branching factor and build_time as strings, error vectors
// string-encoded). Plain strconv — no formatting library appears
// anywhere in the retrieved pack.
func itoa(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
