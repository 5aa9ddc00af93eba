package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Clients send the data parameter either as a bracketed object
// (data[latitude]=..&data[longitude]=..), as a JSON object, or, for text
// queries, as a bare string.

// dataObject collects data[key] parameters, falling back to a JSON-encoded
// data value. ok is false when neither form is present.
func dataObject(r *http.Request) (map[string]string, bool) {
	q := r.URL.Query()

	fields := make(map[string]string)
	for key, values := range q {
		if !strings.HasPrefix(key, "data[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		fields[key[len("data["):len(key)-1]] = values[0]
	}
	if len(fields) > 0 {
		return fields, true
	}

	raw := strings.TrimSpace(q.Get("data"))
	if !strings.HasPrefix(raw, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false
	}
	for k, v := range obj {
		switch v := v.(type) {
		case string:
			fields[k] = v
		case float64:
			fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			fields[k] = fmt.Sprint(v)
		}
	}
	return fields, true
}

// coordinates reads data.latitude and data.longitude.
func coordinates(r *http.Request, route string) (float64, float64, error) {
	fields, ok := dataObject(r)
	if !ok {
		return 0, 0, fmt.Errorf("%s request needs data[latitude] and data[longitude]", route)
	}

	lat, err := parseCoord(fields, "latitude", -90, 90)
	if err != nil {
		return 0, 0, fmt.Errorf("%s request: %w", route, err)
	}
	lon, err := parseCoord(fields, "longitude", -180, 180)
	if err != nil {
		return 0, 0, fmt.Errorf("%s request: %w", route, err)
	}
	return lat, lon, nil
}

func parseCoord(fields map[string]string, name string, lo, hi float64) (float64, error) {
	raw, ok := fields[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s %v out of range", name, v)
	}
	return v, nil
}

// searchQuery reads data.search_query, or data itself when it is plain text.
func searchQuery(r *http.Request, route string) (string, error) {
	if fields, ok := dataObject(r); ok {
		if q := strings.TrimSpace(fields["search_query"]); q != "" {
			return q, nil
		}
		return "", fmt.Errorf("%s request needs data[search_query]", route)
	}

	if q := strings.TrimSpace(r.URL.Query().Get("data")); q != "" {
		return q, nil
	}
	return "", fmt.Errorf("%s request needs data", route)
}
