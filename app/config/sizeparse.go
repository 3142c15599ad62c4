package config

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var sizeRegex = regexp.MustCompile(`^([0-9]+)\s*([A-Za-z]*)$`)

// sizeUnits maps lower-case unit suffixes to their multiplier.
// IEC units (Ki, Mi, ...) use powers of 1024, SI units (K, M, ...) powers of 1000.
var sizeUnits = map[string]int64{
	"": 1, "b": 1,
	"k": 1e3, "kb": 1e3, "ki": 1 << 10, "kib": 1 << 10,
	"m": 1e6, "mb": 1e6, "mi": 1 << 20, "mib": 1 << 20,
	"g": 1e9, "gb": 1e9, "gi": 1 << 30, "gib": 1 << 30,
	"t": 1e12, "tb": 1e12, "ti": 1 << 40, "tib": 1 << 40,
}

// parseSizeString converts strings like "200Mi", "1MiB", "500MB", "1024", "1024B" into bytes.
func parseSizeString(s string) (int64, error) {
	m := sizeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("must be numeric with optional unit suffix (e.g., '200Mi', '1MiB', '500MB', '1024B')")
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, err
	}
	factor, ok := sizeUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown unit '%s'", m[2])
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("size '%s' overflows", s)
	}
	return n * factor, nil
}
