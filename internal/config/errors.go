package config

import "github.com/ayoisaiah/autotrack/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errPrompt = &apperr.Error{
		Message: "first-run prompt failed",
	}

	errEmptyUserID = &apperr.Error{
		Message: "user.id cannot be empty",
	}

	errInvalidWorkStart = &apperr.Error{
		Message: "work.start must be a time of day in HH:MM format, got %q",
	}

	errInvalidWorkHours = &apperr.Error{
		Message: "work.hours must be greater than 0 and at most %d, got %v",
	}

	errInvalidBreak = &apperr.Error{
		Message: "invalid break %q-%q: both ends must be in HH:MM format",
	}

	errDayTooLong = &apperr.Error{
		Message: "work hours plus breaks (%s) exceed a day",
	}

	errUnknownSource = &apperr.Error{
		Message: "unknown activity source %q: must be %q or %q",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "log.level must be one of debug, info, warn or error, got %q",
	}

	errEmptyServerAddr = &apperr.Error{
		Message: "server.addr cannot be empty",
	}

	errInvalidExtraHours = &apperr.Error{
		Message: "invalid --extra value %q: expected TASK=HOURS",
	}

	errInvalidDate = &apperr.Error{
		Message: "invalid --date value %q",
	}
)
