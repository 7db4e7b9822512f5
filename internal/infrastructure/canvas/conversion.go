package canvas

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Derived conversion columns.
const (
	ColInboundRateValue   = "Inbound Rate Value"
	ColOutboundProxyValue = "Outbound Proxy Value"
	ColInboundHelpRatePct = "Inbound Help Rate (%)"
	ColOutboundHelpRate   = "Outbound Help Rate (%)"
)

// FetchConversion submits the lead-to-appointment form for week and downloads
// the spreadsheet export. Outbound mode includes home-show leads.
func (c *Client) FetchConversion(ctx context.Context, week domain.Week, mode domain.Mode) ([]domain.Row, error) {
	form := map[string]string{
		"start_date":   week.StartString(),
		"end_date":     week.EndString(),
		"quick_search": "Search",
		"search_for":   "",
		"submit":       "Show Report",
	}
	if mode == domain.ModeOutbound {
		form["include_homeshow"] = "true"
	}

	if err := c.postForm(ctx, c.endpoints.ConversionForm, form); err != nil {
		return nil, fmt.Errorf("conversion %s: %w", mode, err)
	}
	body, err := c.get(ctx, c.endpoints.ConversionExport, nil, c.endpoints.ConversionForm)
	if err != nil {
		return nil, fmt.Errorf("conversion %s: %w", mode, err)
	}

	report := "conversion_" + string(mode)
	if looksLikeHTML(body) {
		if isLoginPage(body) {
			return nil, c.shapeError(report, week, body, ErrLoginRequired)
		}
		return nil, c.shapeError(report, week, body, ErrTableNotFound)
	}

	rows, err := parseCSV(body)
	if err != nil {
		return nil, c.shapeError(report, week, body, err)
	}
	for i := range rows {
		rows[i] = deriveConversionColumns(rows[i])
	}
	c.logger.Debug("conversion report fetched", "week", week.String(), "mode", string(mode), "rows", len(rows))
	return rows, nil
}

// deriveConversionColumns adds the numeric help-rate and touches-proxy columns
// the dashboard reads. Source columns that are absent or unparsable leave the
// derived value empty.
func deriveConversionColumns(row domain.Row) domain.Row {
	if raw, ok := row.Get("Inbound Help Rate"); ok {
		if v, ok := parsePercent(raw); ok {
			row = row.Set(ColInboundRateValue, strconv.FormatFloat(v, 'f', -1, 64))
			row = row.Set(ColInboundHelpRatePct, formatPercent(v))
		} else {
			row = row.Set(ColInboundRateValue, "")
			row = row.Set(ColInboundHelpRatePct, "")
		}
	}
	if raw, ok := row.Get("Outbound Communication Count"); ok {
		value := ""
		if n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(raw), ",", "")); err == nil {
			value = strconv.Itoa(n)
		}
		row = row.Set(ColOutboundProxyValue, value)
	}
	if raw, ok := row.Get("Outbound Help Rate"); ok {
		value := ""
		if v, ok := parsePercent(raw); ok {
			value = formatPercent(v)
		}
		row = row.Set(ColOutboundHelpRate, value)
	}
	return row
}

func parsePercent(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// parseCSV reads a header row plus records. Empty input yields no rows; short
// records are padded and long ones truncated to the header.
func parseCSV(body []byte) ([]domain.Row, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\ufeff"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []domain.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		if blankRecord(record) {
			continue
		}
		row := make(domain.Row, 0, len(header))
		for i, name := range header {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row = append(row, domain.Field{Name: name, Value: value})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	lower := bytes.ToLower(trimmed[:min(len(trimmed), 512)])
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype")) ||
		bytes.Contains(lower, []byte("<body")) || bytes.Contains(lower, []byte("<form"))
}
