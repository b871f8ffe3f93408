package yahoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"fxsignal/internal/model"
)

// ErrNoData means the chart response held no usable bars.
var ErrNoData = errors.New("yahoo: no data")

// chartResponse mirrors the parts of /v8/finance/chart we read.
// Price arrays are nullable: Yahoo emits null for minutes without a quote.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Timezone string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// parseChart decodes a chart payload into a Series.
// Rows with a null or non-finite price are dropped, as are rows whose
// timestamp does not advance past the previous kept row.
func parseChart(raw []byte) (model.Series, error) {
	var resp chartResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("yahoo: decode chart: %w", err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	res := resp.Chart.Result[0]
	q := res.Indicators.Quote[0]
	n := len(res.Timestamp)
	if len(q.Open) < n || len(q.High) < n || len(q.Low) < n || len(q.Close) < n {
		return nil, fmt.Errorf("yahoo: ragged chart arrays: %d timestamps, o=%d h=%d l=%d c=%d",
			n, len(q.Open), len(q.High), len(q.Low), len(q.Close))
	}

	out := make(model.Series, 0, n)
	var last time.Time
	for i, ts := range res.Timestamp {
		o, okO := finite(q.Open[i])
		h, okH := finite(q.High[i])
		l, okL := finite(q.Low[i])
		c, okC := finite(q.Close[i])
		if !okO || !okH || !okL || !okC {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		if len(out) > 0 && !t.After(last) {
			continue
		}
		out = append(out, model.Bar{TS: t, Open: o, High: h, Low: l, Close: c})
		last = t
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func finite(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}
