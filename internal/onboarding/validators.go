package onboarding

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field validators are pure: no I/O, no clock access beyond the passed-in
// reference time. An empty input reports ErrNotProvided rather than a format
// error; during drafting an empty field is fine, only the final review
// treats it as missing.
var (
	ErrNotProvided = errors.New("not provided")
	ErrFormat      = errors.New("invalid format")
	ErrRange       = errors.New("out of range")
)

const (
	MinHeightCM = 120
	MaxHeightCM = 250
	MinWeightKG = 35
	MaxWeightKG = 300
	MinAge      = 13
	MaxAge      = 100
)

var birthDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateBirthDate checks YYYY-MM-DD shape, rejects impossible calendar
// dates (2023-02-30) and enforces age within [13, 100] as of now.
func ValidateBirthDate(s string, now time.Time) error {
	if s == "" {
		return ErrNotProvided
	}
	if !birthDatePattern.MatchString(s) {
		return ErrFormat
	}
	year, month, day, ok := decomposeDate(s)
	if !ok {
		return ErrFormat
	}
	age := ageFrom(year, month, day, now)
	if age < MinAge || age > MaxAge {
		return ErrRange
	}
	return nil
}

// AgeOn computes full years between the birth date and now, decrementing by
// one when the birthday has not yet occurred this year. Malformed input or
// an implausible result ([0, 130) violated) is reported as unknown, not as
// an error: at review time the age simply stays blank.
func AgeOn(s string, now time.Time) (int, bool) {
	if !birthDatePattern.MatchString(s) {
		return 0, false
	}
	year, month, day, ok := decomposeDate(s)
	if !ok {
		return 0, false
	}
	age := ageFrom(year, month, day, now)
	if age < 0 || age >= 130 {
		return 0, false
	}
	return age, true
}

func decomposeDate(s string) (year, month, day int, ok bool) {
	parts := strings.SplitN(s, "-", 3)
	year, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	day, _ = strconv.Atoi(parts[2])
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dt.Year() != year || dt.Month() != time.Month(month) || dt.Day() != day {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func ageFrom(year, month, day int, now time.Time) int {
	age := now.Year() - year
	monthDiff := int(now.Month()) - month
	if monthDiff < 0 || (monthDiff == 0 && now.Day() < day) {
		age--
	}
	return age
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// ParseHeight is forgiving on input (non-digit characters are stripped the
// way the height field scrubs keyboard noise) but strict on validity.
func ParseHeight(s string) (float64, error) {
	cleaned := nonDigits.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, ErrNotProvided
	}
	h, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(h) {
		return 0, ErrFormat
	}
	if h < MinHeightCM || h > MaxHeightCM {
		return 0, ErrRange
	}
	return h, nil
}

var nonWeightChars = regexp.MustCompile(`[^0-9.,]`)
var separators = regexp.MustCompile(`[.,]`)

// ParseWeight accepts either "." or "," as the decimal separator. Extra
// separators after the first are dropped, then the comma is normalized, so
// "75,5" and "75.5" parse identically. Bounds are inclusive.
func ParseWeight(s string) (float64, error) {
	cleaned := nonWeightChars.ReplaceAllString(s, "")
	if idx := separators.FindStringIndex(cleaned); idx != nil {
		head := cleaned[:idx[1]]
		tail := separators.ReplaceAllString(cleaned[idx[1]:], "")
		cleaned = head + tail
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	if cleaned == "" || cleaned == "." {
		return 0, ErrNotProvided
	}
	w, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(w) {
		return 0, ErrFormat
	}
	if w < MinWeightKG || w > MaxWeightKG {
		return 0, ErrRange
	}
	return w, nil
}

// BMI returns weight_kg / height_m², rounded to one decimal. ok is false
// unless both inputs are finite and positive.
func BMI(heightCM, weightKG float64) (float64, bool) {
	if !isFinite(heightCM) || !isFinite(weightKG) || heightCM <= 0 || weightKG <= 0 {
		return 0, false
	}
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*10) / 10, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
