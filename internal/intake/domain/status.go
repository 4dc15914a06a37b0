// Package domain holds the business rules of the form intake bounded context.
package domain

import "strings"

// Quote request statuses. Only admins move a record between them.
const (
	QuoteStatusNew       = "new"
	QuoteStatusReviewing = "reviewing"
	QuoteStatusQuoted    = "quoted"
	QuoteStatusAccepted  = "accepted"
	QuoteStatusRejected  = "rejected"
)

// Contact message statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// QuoteStatuses lists every quote status in workflow order.
var QuoteStatuses = []string{
	QuoteStatusNew,
	QuoteStatusReviewing,
	QuoteStatusQuoted,
	QuoteStatusAccepted,
	QuoteStatusRejected,
}

// ContactStatuses lists every contact status in workflow order.
var ContactStatuses = []string{
	ContactStatusNew,
	ContactStatusRead,
	ContactStatusReplied,
	ContactStatusArchived,
}

// IsQuoteStatus reports whether status is a known quote status.
func IsQuoteStatus(status string) bool {
	return contains(QuoteStatuses, status)
}

// IsContactStatus reports whether status is a known contact status.
func IsContactStatus(status string) bool {
	return contains(ContactStatuses, status)
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

// AustralianStates are the accepted delivery state and territory codes.
var AustralianStates = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

// IsAustralianState matches a code case-insensitively.
func IsAustralianState(code string) bool {
	return contains(AustralianStates, strings.ToUpper(strings.TrimSpace(code)))
}
