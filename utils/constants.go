package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Dashboard and import constants
const (
	// RevenueTrendDays is the trailing window of the dashboard revenue series
	RevenueTrendDays = 7

	// PercentScale is the number of decimal places kept on percentage figures
	PercentScale = 2

	// DefaultPageSize caps unfiltered list queries
	DefaultPageSize = 20

	// MaxPageSize is the hard upper bound a client may request
	MaxPageSize = 100
)

// Cache constants
const (
	// DashboardStatsCacheTTL bounds staleness of the cached dashboard stats
	DashboardStatsCacheTTL = time.Minute

	// DashboardStatsCacheKey prefixes dashboard stat entries in Redis
	DashboardStatsCacheKey = "dashboard:stats"
)
