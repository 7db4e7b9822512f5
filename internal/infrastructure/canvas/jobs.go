package canvas

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// StatusFilter pairs a job status label with its Canvas status id.
type StatusFilter struct {
	Name string
	ID   int
}

// StatusFilters are queried in pipeline order.
var StatusFilters = []StatusFilter{
	{Name: "Measurement Appointment Scheduled", ID: 2},
	{Name: "Measurement Approved", ID: 23},
	{Name: "Submitted to Manufacturing Partner", ID: 5},
	{Name: "Order Shipped", ID: 6},
	{Name: "Order Received", ID: 37},
	{Name: "Install Scheduled", ID: 8},
	{Name: "Installed", ID: 9},
	{Name: "Complete", ID: 13},
}

// Job listing columns.
const (
	ColJobID      = "ID"
	ColOrderType  = "Order Type"
	ColFranchisee = "Franchisee"
	ColDate       = "Date"
	ColStatus     = "Status"
)

// jobStatusIDs are the statuses a job may currently be in for the listing to include it.
var jobStatusIDs = []int{2, 3, 5, 6, 7, 8, 9, 10, 11, 12, 13, 21, 22, 23, 24, 25, 30, 31, 33, 34, 37, 38}

var markup = bluemonday.StrictPolicy()

// FetchJobStatus lists the jobs that reached each tracked status during week.
func (c *Client) FetchJobStatus(ctx context.Context, week domain.Week) ([]domain.Row, error) {
	var rows []domain.Row
	for _, status := range StatusFilters {
		body, err := c.get(ctx, c.endpoints.Jobs, jobQuery(status.ID, week), "")
		if err != nil {
			return nil, fmt.Errorf("jobs %s: %w", status.Name, err)
		}
		if looksLikeHTML(body) && isLoginPage(body) {
			return nil, c.shapeError("jobs", week, body, ErrLoginRequired)
		}

		statusRows, err := parseJobListing(body, status.Name)
		if err != nil {
			return nil, c.shapeError("jobs_"+strconv.Itoa(status.ID), week, body, err)
		}
		rows = append(rows, statusRows...)
	}
	return rows, nil
}

func jobQuery(statusID int, week domain.Week) url.Values {
	q := url.Values{}
	q.Set("dsraas", "1")
	for _, id := range jobStatusIDs {
		q.Add("current_status_ids[]", strconv.Itoa(id))
	}
	q.Set("active_y", "y")
	q.Set("status_field_name_for_filter", strconv.Itoa(statusID))
	q.Set("status_update_search_date_ge", week.StartString())
	q.Set("status_update_search_date_le", week.EndString())
	q.Set("status_update_search_date_r", "select")
	q.Set("sort_by", "id")
	q.Set("sort_dir", "DESC")
	q.Set("display", "on")
	q.Add("c[]", "id")
	q.Add("c[]", "location_id")
	q.Set("filter", "Submit")
	return q
}

// parseJobListing strips the markup wrapped around the CSV export and keeps the
// columns the dashboard uses.
func parseJobListing(body []byte, status string) ([]domain.Row, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(markup.Sanitize(string(body))))
	if cleaned == "" {
		return nil, nil
	}

	table, err := parseCSV([]byte(cleaned))
	if err != nil {
		return nil, err
	}

	dateColumn := strings.ToLower(status + " Date")
	rows := make([]domain.Row, 0, len(table))
	for _, src := range table {
		var date string
		for _, f := range src {
			if strings.ToLower(f.Name) == dateColumn {
				date = f.Value
				break
			}
		}
		id := src.Value(ColJobID)
		rows = append(rows, domain.Row{
			{Name: ColJobID, Value: id},
			{Name: ColOrderType, Value: ClassifyOrder(id)},
			{Name: ColFranchisee, Value: src.Value(ColFranchisee)},
			{Name: ColDate, Value: date},
			{Name: ColStatus, Value: status},
		})
	}
	return rows, nil
}

// ClassifyOrder derives the order type from the job id prefix.
func ClassifyOrder(id string) string {
	switch {
	case strings.HasPrefix(id, "C"):
		return "Claim"
	case strings.HasPrefix(id, "R"):
		return "Reorder"
	default:
		return "New"
	}
}
