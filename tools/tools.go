package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var unsafeUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// MakeUsername builds a unique-enough login name from the local part of an email.
func MakeUsername(email string, now time.Time) string {
	local, _, _ := strings.Cut(email, "@")
	safe := strings.ToLower(unsafeUsernameChars.ReplaceAllString(local, ""))
	if safe == "" {
		safe = "user"
	}
	return fmt.Sprintf("%s_%d", safe, now.UnixMilli())
}

// Capitalize upper-cases the first rune.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// PositiveInt parses a JSON number or numeric string holding a positive integer.
func PositiveInt(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// 3.0 is still an integer
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		n = int64(f)
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}
