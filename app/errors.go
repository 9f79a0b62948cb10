package app

import "github.com/ayoisaiah/autotrack/internal/apperr"

var errDecodeFile = &apperr.Error{
	Message: "decoding %s failed: expected a YAML list",
}
