package canvas

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Ranking metrics served by the location rankings page.
const (
	MetricRPA   = "rpa"
	MetricSales = "sales"
)

// LocationColumn is the normalized location column emitted by the location reports.
const LocationColumn = "Location"

// FetchROI pulls the marketing ROI report and returns its Grand Totals row.
func (c *Client) FetchROI(ctx context.Context, week domain.Week) ([]domain.Row, error) {
	query := url.Values{}
	for _, id := range c.campaignIDs {
		query.Add("campaign_ids[]", strconv.Itoa(id))
	}
	query.Set("sd", week.StartString())
	query.Set("ed", week.EndString())
	query.Set("submit", "Generate Report")

	body, err := c.get(ctx, c.endpoints.MarketingROI, query, "")
	if err != nil {
		return nil, fmt.Errorf("roi: %w", err)
	}
	if isLoginPage(body) {
		return nil, c.shapeError("roi", week, body, ErrLoginRequired)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("roi: parse document: %w", err)
	}

	row, err := c.extractGrandTotals(doc)
	if err != nil {
		return nil, c.shapeError("roi", week, body, err)
	}
	return []domain.Row{row}, nil
}

// extractGrandTotals zips the header row (minus the Grand Totals label) with
// the value row of the table holding the rowspan=2 Grand Totals cell.
func (c *Client) extractGrandTotals(doc *goquery.Document) (domain.Row, error) {
	var grand *goquery.Selection
	doc.Find(`th[rowspan="2"]`).EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.Contains(th.Text(), "Grand") {
			grand = th
			return false
		}
		return true
	})
	if grand == nil {
		return nil, fmt.Errorf("%w: no Grand Totals header", ErrTableNotFound)
	}

	rows := grand.Closest("table").Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("%w: expected 2 rows, got %d", ErrTableNotFound, rows.Length())
	}

	headers := cellTexts(rows.Eq(0).Find("th"))
	values := cellTexts(rows.Eq(1).Find("td"))
	if len(headers) < 2 || len(values) == 0 {
		return nil, fmt.Errorf("%w: headers or values empty", ErrTableNotFound)
	}
	headers = headers[1:]

	if len(values) != len(headers) {
		c.logger.Warn("roi value count mismatch", "headers", len(headers), "values", len(values))
	}
	n := min(len(headers), len(values))
	row := make(domain.Row, 0, n)
	for i := 0; i < n; i++ {
		row = append(row, domain.Field{Name: headers[i], Value: values[i]})
	}
	return row, nil
}

// FetchLocationRankings reads the per-location ranking table for metric.
func (c *Client) FetchLocationRankings(ctx context.Context, metric string) ([]domain.Row, error) {
	var path string
	switch metric {
	case MetricRPA:
		path = c.endpoints.LocationRPA
	case MetricSales:
		path = c.endpoints.LocationSales
	default:
		return nil, fmt.Errorf("unknown ranking metric %q", metric)
	}
	return c.fetchLocationTable(ctx, "rankings_"+metric, path)
}

// FetchFutureAppointments reads the upcoming appointment pipeline by location.
func (c *Client) FetchFutureAppointments(ctx context.Context) ([]domain.Row, error) {
	return c.fetchLocationTable(ctx, "appointments", c.endpoints.Appointments)
}

func (c *Client) fetchLocationTable(ctx context.Context, report, path string) ([]domain.Row, error) {
	body, err := c.get(ctx, path, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", report, err)
	}
	if isLoginPage(body) {
		return nil, c.shapeError(report, domain.Week{}, body, ErrLoginRequired)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse document: %w", report, err)
	}
	rows, err := parseLocationTable(doc, c.brandPrefix)
	if err != nil {
		return nil, c.shapeError(report, domain.Week{}, body, err)
	}
	c.logger.Debug("location report fetched", "report", report, "rows", len(rows))
	return rows, nil
}

// parseLocationTable finds the first row with a Location header cell and reads
// every following data row of the same table. The location column is renamed
// to LocationColumn and normalized.
func parseLocationTable(doc *goquery.Document, brand string) ([]domain.Row, error) {
	var (
		headerRow *goquery.Selection
		headers   []string
		locIdx    = -1
	)
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Find("table").Length() > 0 {
			return true
		}
		texts := cellTexts(cells)
		for i, text := range texts {
			if strings.Contains(strings.ToLower(text), "location") {
				headerRow, headers, locIdx = tr, texts, i
				return false
			}
		}
		return true
	})
	if headerRow == nil {
		return nil, fmt.Errorf("%w: no Location header", ErrTableNotFound)
	}
	headers[locIdx] = LocationColumn

	table := headerRow.Closest("table").Get(0)
	var (
		rows       []domain.Row
		pastHeader bool
	)
	headerRow.Closest("table").Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Get(0) == headerRow.Get(0) {
			pastHeader = true
			return
		}
		if !pastHeader || tr.Closest("table").Get(0) != table {
			return
		}
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		values := cellTexts(tr.ChildrenFiltered("th, td"))
		if locIdx >= len(values) || values[locIdx] == "" {
			return
		}
		row := make(domain.Row, 0, len(headers))
		for i, name := range headers {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			if i == locIdx {
				value = NormalizeLocation(value, brand)
			}
			row = append(row, domain.Field{Name: name, Value: value})
		}
		rows = append(rows, row)
	})
	return rows, nil
}

// NormalizeLocation collapses whitespace and strips a leading brand prefix
// such as "Art of Drawers - " from a location name.
func NormalizeLocation(name, brand string) string {
	name = strings.Join(strings.Fields(name), " ")
	if brand == "" || len(name) < len(brand) || !strings.EqualFold(name[:len(brand)], brand) {
		return name
	}
	trimmed := strings.TrimLeft(name[len(brand):], " -–:|")
	if trimmed == "" {
		return name
	}
	return trimmed
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(cell.Text()), " "))
	})
	return texts
}
