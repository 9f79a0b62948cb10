package main

import (
	"os"

	"github.com/ayoisaiah/autotrack/app"
	"github.com/ayoisaiah/autotrack/internal/osutil"
	"github.com/ayoisaiah/autotrack/report"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		report.Error(err)
		os.Exit(osutil.ExitError.Code())
	}
}
