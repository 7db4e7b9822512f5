package canvas

import (
	"context"

	"github.com/mfluker/aod-dashboard/internal/domain"
	"github.com/mfluker/aod-dashboard/internal/ports"
	"github.com/mfluker/aod-dashboard/internal/report"
)

var (
	_ ports.WeeklyReportSource = (*Client)(nil)
	_ ports.ProjectionSource   = (*Client)(nil)
	_ ports.JobStatusSource    = (*Client)(nil)
)

// Report names accepted by the registry.
const (
	ReportConversionInbound  = "conversion-inbound"
	ReportConversionOutbound = "conversion-outbound"
	ReportROI                = "roi"
	ReportRankingsRPA        = "rankings-rpa"
	ReportRankingsSales      = "rankings-sales"
	ReportAppointments       = "appointments"
	ReportJobs               = "jobs"
)

// RegisterReports exposes every Canvas report under its name. Reports that are
// not parameterized by week ignore the request week.
func RegisterReports(reg *report.Registry, c *Client) {
	conversion := func(mode domain.Mode) func(context.Context, report.Request) ([]domain.Row, error) {
		return func(ctx context.Context, req report.Request) ([]domain.Row, error) {
			return c.FetchConversion(ctx, req.Week, mode)
		}
	}
	rankings := func(metric string) func(context.Context, report.Request) ([]domain.Row, error) {
		return func(ctx context.Context, _ report.Request) ([]domain.Row, error) {
			return c.FetchLocationRankings(ctx, metric)
		}
	}

	reg.Register(report.FetcherFunc{ReportName: ReportConversionInbound, Fn: conversion(domain.ModeInbound)})
	reg.Register(report.FetcherFunc{ReportName: ReportConversionOutbound, Fn: conversion(domain.ModeOutbound)})
	reg.Register(report.FetcherFunc{ReportName: ReportROI, Fn: func(ctx context.Context, req report.Request) ([]domain.Row, error) {
		return c.FetchROI(ctx, req.Week)
	}})
	reg.Register(report.FetcherFunc{ReportName: ReportRankingsRPA, Fn: rankings(MetricRPA)})
	reg.Register(report.FetcherFunc{ReportName: ReportRankingsSales, Fn: rankings(MetricSales)})
	reg.Register(report.FetcherFunc{ReportName: ReportAppointments, Fn: func(ctx context.Context, _ report.Request) ([]domain.Row, error) {
		return c.FetchFutureAppointments(ctx)
	}})
	reg.Register(report.FetcherFunc{ReportName: ReportJobs, Fn: func(ctx context.Context, req report.Request) ([]domain.Row, error) {
		return c.FetchJobStatus(ctx, req.Week)
	}})
}
