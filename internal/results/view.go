package results

import (
	"net/url"
	"strconv"
	"strings"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/sentiment"
	"sentiment-dashboard/internal/state"
)

// View is the results page model.
type View struct {
	HasResults bool           `json:"hasResults"`
	TaskID     string         `json:"taskId,omitempty"`
	Query      Query          `json:"query"`
	Rows       []Row          `json:"rows"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Filtered   int            `json:"filtered"`
	Total      int            `json:"total"`
	Sources    []string       `json:"sources"`
	Counts     []LabelCount   `json:"counts"`
	PrevURL    string         `json:"-"`
	NextURL    string         `json:"-"`
	LabelValue string         `json:"-"`
	Stats      *backend.Stats `json:"stats,omitempty"`
}

// ParseQuery reads q, label, source and page parameters. "all" and invalid
// values disable the corresponding filter. The search text is kept verbatim.
func ParseQuery(values url.Values) Query {
	q := Query{
		Search: values.Get("q"),
		Source: strings.TrimSpace(values.Get("source")),
		Page:   1,
	}
	if q.Source == "all" {
		q.Source = ""
	}
	if raw := strings.TrimSpace(values.Get("label")); raw != "" && raw != "all" {
		if n, err := strconv.Atoi(raw); err == nil {
			label := sentiment.Label(n)
			if label.Valid() {
				q.Label = &label
			}
		}
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = n
	}
	return q
}

// Encode renders q as URL parameters for page p.
func (q Query) Encode(p int) string {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Label != nil {
		values.Set("label", strconv.Itoa(int(*q.Label)))
	}
	if q.Source != "" {
		values.Set("source", q.Source)
	}
	values.Set("page", strconv.Itoa(p))
	return values.Encode()
}

// BuildView filters and paginates the stored results.
func BuildView(snap state.AppState, q Query) View {
	filtered := Filter(snap.Results, q)
	rows, page, totalPages := Paginate(filtered, q.Page, PageSize)
	q.Page = page

	v := View{
		HasResults: snap.HasResults(),
		TaskID:     snap.TaskID,
		Query:      q,
		Rows:       rows,
		Page:       page,
		TotalPages: totalPages,
		Filtered:   len(filtered),
		Total:      len(snap.Results),
		Sources:    Sources(snap.Results),
		Counts:     LabelCounts(snap.Stats),
		LabelValue: "all",
		Stats:      snap.Stats,
	}
	if snap.Stats != nil {
		v.Total = snap.Stats.Total
	}
	if q.Label != nil {
		v.LabelValue = strconv.Itoa(int(*q.Label))
	}
	if page > 1 {
		v.PrevURL = "/results?" + q.Encode(page-1)
	}
	if page < totalPages {
		v.NextURL = "/results?" + q.Encode(page+1)
	}
	return v
}
