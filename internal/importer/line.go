// Package importer turns delimited text lines into transaction fields.
//
// A line has the shape
//
//	date, amount, category[, description]
//
// where date is YYYY-MM-DD or M/D/YYYY, amount is a plain decimal with an
// optional leading minus, and description is the remainder of the line (it
// may contain commas). Parsing only checks the shape; domain rules such as a
// non-empty category are enforced when the transaction is built.
package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

var ErrLineFormat = errors.New("line does not match expected format")

var linePattern = regexp.MustCompile(
	`^\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})\s*,` + // date
		`\s*(-?\d+(?:\.\d+)?)\s*,` + // amount
		`\s*([^,]+?)\s*` + // category
		`(?:,(.*))?$`, // optional description
)

const usDateLayout = "1/2/2006"

// Fields are the values extracted from one line.
type Fields struct {
	Date        core.Date
	Amount      float64
	Category    string
	Description string
}

// ParseError reports a line that could not be parsed. Line holds the
// original text.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error {
	return ErrLineFormat
}

// ParseLine extracts date, amount, category and description from line.
func ParseLine(line string) (Fields, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Fields{}, &ParseError{Line: line, Reason: ErrLineFormat.Error()}
	}

	date, err := parseDate(m[1])
	if err != nil {
		return Fields{}, &ParseError{Line: line, Reason: "invalid date " + strconv.Quote(m[1])}
	}

	amount, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Fields{}, &ParseError{Line: line, Reason: "invalid amount " + strconv.Quote(m[2])}
	}

	return Fields{
		Date:        date,
		Amount:      amount,
		Category:    strings.TrimSpace(m[3]),
		Description: strings.TrimSpace(m[4]),
	}, nil
}

func parseDate(s string) (core.Date, error) {
	layout := core.DateLayout
	if strings.Contains(s, "/") {
		layout = usDateLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}
