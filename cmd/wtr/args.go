package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

type args struct {
	help   bool
	limits bool
	config string
	path   string
	time   time.Duration // Zero means until stdin closes
}

const day = 24 * time.Hour

var units = map[string]time.Duration{
	"-nanoseconds": time.Nanosecond, "-ns": time.Nanosecond,
	"-microseconds": time.Microsecond, "-us": time.Microsecond,
	"-milliseconds": time.Millisecond, "-ms": time.Millisecond,
	"-seconds": time.Second, "-s": time.Second,
	"-minutes": time.Minute, "-m": time.Minute,
	"-hours": time.Hour, "-h": time.Hour,
	"-days": day, "-d": day,
	"-weeks": 7 * day, "-w": 7 * day,
	"-months": 30 * day, "-mts": 30 * day,
	"-years": 365 * day, "-y": 365 * day,
}

// parseArgs parses [-config FILE] [PATH [-UNIT TIME]], -limits, or -h.
// Help only counts as the first argument; after PATH, -h means hours.
func parseArgs(argv []string) (args, error) {
	a := args{path: "."}
	if len(argv) > 0 {
		switch argv[0] {
		case "-h", "-help", "--help", "help":
			a.help = true
			return a, nil
		case "-limits", "--limits":
			a.limits = true
			return a, nil
		case "-config", "--config":
			if len(argv) < 2 {
				return a, errors.New("-config needs a file")
			}
			a.config = argv[1]
			argv = argv[2:]
		}
	}

	if len(argv) == 0 {
		return a, nil
	}
	a.path = argv[0]
	if _, err := os.Stat(a.path); err != nil {
		return a, fmt.Errorf("%q: %w", a.path, err)
	}

	switch len(argv) {
	case 1:
		return a, nil
	case 3:
	default:
		return a, fmt.Errorf("expected PATH -UNIT TIME, got %d arguments", len(argv))
	}

	unit, ok := units[argv[1]]
	if !ok {
		return a, fmt.Errorf("unknown unit %q", argv[1])
	}
	n, err := strconv.ParseFloat(argv[2], 64)
	if err != nil {
		return a, fmt.Errorf("time %q: %w", argv[2], err)
	}
	if n <= 0 || math.IsNaN(n) || n*float64(unit) >= math.MaxInt64 {
		return a, fmt.Errorf("time %q out of range", argv[2])
	}
	a.time = time.Duration(math.Round(n * float64(unit)))
	if a.time <= 0 {
		// Zero means "until stdin closes"; don't let rounding pick that.
		return a, fmt.Errorf("time %q is less than 1ns", argv[2])
	}
	return a, nil
}
