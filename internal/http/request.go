package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return badRequest("request body must not be empty")
		}
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid transaction id %q", raw))
	}
	return id, nil
}

// parseFilter reads the optional start, end and category query parameters.
func parseFilter(q url.Values) (core.Filter, error) {
	var f core.Filter
	for _, p := range []struct {
		name string
		dst  *core.Optional[core.Date]
	}{{"start", &f.Start}, {"end", &f.End}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, badRequest(fmt.Sprintf("invalid %s date %q: expected YYYY-MM-DD", p.name, v))
		}
		*p.dst = core.Some(d)
	}
	if c := q.Get("category"); c != "" {
		f.Category = core.Some(c)
	}
	return f, nil
}

// parseMonth reads year and month query parameters. A missing parameter
// takes its value from current.
func parseMonth(q url.Values, current core.Month) (core.Month, error) {
	year, month := current.Year, int(current.Month)
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Month{}, badRequest(fmt.Sprintf("invalid year %q", v))
		}
		year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Month{}, badRequest(fmt.Sprintf("invalid month %q", v))
		}
		month = m
	}
	return core.NewMonth(year, month)
}

type createTransactionRequest struct {
	Date        string   `json:"date"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

func (req createTransactionRequest) parse() (core.Date, float64, error) {
	d, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Date{}, 0, err
	}
	if req.Amount == nil {
		return core.Date{}, 0, fmt.Errorf("%w: amount is required", core.ErrInvalidAmount)
	}
	return d, *req.Amount, nil
}

// decodePatch builds a patch from a JSON object. Keys that are absent leave
// the field untouched; unknown keys and nulls are rejected.
func decodePatch(w http.ResponseWriter, r *http.Request) (core.TransactionPatch, error) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return core.TransactionPatch{}, err
	}

	var p core.TransactionPatch
	for key, value := range raw {
		if string(value) == "null" {
			return core.TransactionPatch{}, badRequest(fmt.Sprintf("field %q cannot be null", key))
		}
		switch key {
		case "date":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return core.TransactionPatch{}, badRequest("field \"date\" must be a string")
			}
			d, err := core.ParseDate(s)
			if err != nil {
				return core.TransactionPatch{}, err
			}
			p.Date = core.Some(d)
		case "amount":
			var a float64
			if err := json.Unmarshal(value, &a); err != nil {
				return core.TransactionPatch{}, badRequest("field \"amount\" must be a number")
			}
			p.Amount = core.Some(a)
		case "category":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return core.TransactionPatch{}, badRequest("field \"category\" must be a string")
			}
			p.Category = core.Some(s)
		case "description":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return core.TransactionPatch{}, badRequest("field \"description\" must be a string")
			}
			p.Description = core.Some(s)
		default:
			return core.TransactionPatch{}, badRequest(fmt.Sprintf("unknown field %q", key))
		}
	}
	if p.IsEmpty() {
		return core.TransactionPatch{}, badRequest("patch must set at least one field")
	}
	return p, nil
}

type setBudgetRequest struct {
	Amount *float64 `json:"amount"`
}

// readImportText returns the CSV text from a multipart "file" part or, for
// any other content type, from the raw body. The body is capped at limit.
func readImportText(w http.ResponseWriter, r *http.Request, limit int64) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", err
			}
			return "", badRequest(fmt.Sprintf("invalid multipart form: %v", err))
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", badRequest("no file part")
		}
		defer file.Close()
		body, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("read uploaded file: %w", err)
		}
		return string(body), nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
