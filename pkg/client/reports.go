package workmate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Report is a persisted report row.
type Report struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Type          string          `json:"type"`
	Content       json.RawMessage `json:"content"`
	GeneratedByID *uint           `json:"generated_by_id"`
	DateFrom      time.Time       `json:"date_from"`
	DateTo        time.Time       `json:"date_to"`
	CreatedAt     time.Time       `json:"created_at"`
}

// GenerateReportRequest asks the report agent for a report over a date range.
type GenerateReportRequest struct {
	ReportType string                 `json:"report_type"`
	StartDate  string                 `json:"start_date,omitempty"`
	EndDate    string                 `json:"end_date,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

// GenerateReportResponse points at the persisted row and carries the rendered
// report text.
type GenerateReportResponse struct {
	Message  string `json:"message"`
	ReportID *uint  `json:"report_id"`
	Content  string `json:"content"`
}

// GenerateReport runs a report through the report agent.
func (c *Client) GenerateReport(ctx context.Context, req GenerateReportRequest) (*GenerateReportResponse, error) {
	var response GenerateReportResponse
	if err := c.call(ctx, http.MethodPost, "/api/reports/generate", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListReports lists persisted reports visible to the authenticated user,
// newest first. reportType may be empty.
func (c *Client) ListReports(ctx context.Context, reportType string, limit, offset int) ([]Report, error) {
	query := url.Values{}
	if reportType != "" {
		query.Set("report_type", reportType)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/reports"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var reports []Report
	if err := c.call(ctx, http.MethodGet, path, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport returns one persisted report.
func (c *Client) GetReport(ctx context.Context, id uint) (*Report, error) {
	var report Report
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/reports/%d", id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
