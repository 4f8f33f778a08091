package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// retryInfoType is the detail type carrying a structured retry delay.
const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// Free-form phrasings of the retry delay seen in quota errors:
//
//	"Please retry in 42.123s."
//	"retry_delay { seconds: 125 }"
var (
	retryInPattern    = regexp.MustCompile(`(?i)retry in (\d+(?:\.\d+)?)\s*s`)
	retryDelayPattern = regexp.MustCompile(`(?i)retry_delay\s*\{\s*seconds:\s*(\d+)\s*\}`)
)

// ParseRetryDelay extracts a retry delay from free-form error text.
// It reports false when neither known phrasing is present.
func ParseRetryDelay(text string) (time.Duration, bool) {
	if m := retryInPattern.FindStringSubmatch(text); m != nil {
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return time.Duration(seconds * float64(time.Second)), true
		}
	}
	if m := retryDelayPattern.FindStringSubmatch(text); m != nil {
		seconds, err := strconv.Atoi(m[1])
		if err == nil {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return 0, false
}

// RetryDelayFromError looks for a retry delay in err. Structured RetryInfo
// details on a genai.APIError win over the free-form message.
func RetryDelayFromError(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		for _, detail := range apiErr.Details {
			if t, _ := detail["@type"].(string); t != retryInfoType {
				continue
			}
			raw, _ := detail["retryDelay"].(string)
			if d, parseErr := time.ParseDuration(strings.TrimSpace(raw)); parseErr == nil {
				return d, true
			}
		}
	}

	return ParseRetryDelay(err.Error())
}

// FormatWait renders a delay as "N s" below one minute and "M min S s" above,
// rounding partial seconds up.
func FormatWait(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(math.Ceil(d.Seconds()))
	if total < 60 {
		return fmt.Sprintf("%d s", total)
	}
	minutes, seconds := total/60, total%60
	if seconds == 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d min %d s", minutes, seconds)
}
