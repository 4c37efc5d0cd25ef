package cli

import (
	"log"
)

// checkf exits the program with the formatted message if one of the arguments is a non-nil error.
func checkf(format string, args ...any) {
	for _, arg := range args {
		if err, _ := arg.(error); err != nil {
			log.Fatalf(format, args...)
		}
	}
}
