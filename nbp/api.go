package nbp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"pit38"
)

/*
	{
	  "table": "A",
	  "currency": "dolar amerykański",
	  "code": "USD",
	  "rates": [
	    {"no": "102/A/NBP/2024", "effectiveDate": "2024-05-27", "mid": 3.9350},
	    ...
	  ]
	}
*/

// FetchRange retrieves the USD mid rates for a date range from the NBP web
// API. The API rejects ranges longer than a year, so this is the ad-hoc
// complement to the yearly archives, not a replacement.
func (c *Client) FetchRange(from, to pit38.Date) ([]pit38.RatePoint, error) {
	addr := fmt.Sprintf("%s/exchangerates/rates/a/usd/%s/%s/?format=json", c.APIBase, from, to)
	var jobj any
	if err := c.jwget(addr, &jobj); err != nil {
		return nil, fmt.Errorf("rates %s..%s: %w", from, to, err)
	}

	dates, err := jsonpathStrings(jobj, "$.rates[*].effectiveDate")
	if err != nil {
		return nil, fmt.Errorf("rates %s..%s: %w", from, to, err)
	}
	mids, err := jsonpathFloats(jobj, "$.rates[*].mid")
	if err != nil {
		return nil, fmt.Errorf("rates %s..%s: %w", from, to, err)
	}
	if len(dates) != len(mids) {
		return nil, fmt.Errorf("rates %s..%s: %d dates but %d values", from, to, len(dates), len(mids))
	}

	points := make([]pit38.RatePoint, 0, len(dates))
	for i, d := range dates {
		day, err := pit38.ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("rates %s..%s: %w", from, to, err)
		}
		points = append(points, pit38.RatePoint{Date: day, Rate: decimal.NewFromFloat(mids[i])})
	}
	return points, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func (c *Client) jwget(addr string, data any) error {
	resp, err := c.HTTP.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// jsonpathStrings evaluates a path expected to yield a list of strings.
func jsonpathStrings(jobj any, path string) ([]string, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list of one
		// answer or a single answer; normalize to a list.
		jlist = []any{jval}
	}
	out := make([]string, 0, len(jlist))
	for _, v := range jlist {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("parsing %q: %v is not a string", path, v)
		}
		out = append(out, s)
	}
	return out, nil
}

// jsonpathFloats evaluates a path expected to yield a list of numbers.
func jsonpathFloats(jobj any, path string) ([]float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		jlist = []any{jval}
	}
	out := make([]float64, 0, len(jlist))
	for _, v := range jlist {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("parsing %q: %v is not a number", path, v)
		}
		out = append(out, f)
	}
	return out, nil
}
