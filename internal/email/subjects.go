package email

const (
	subjectQuoteInternalFmt       = "New quote request: %s from %s"
	subjectQuoteConfirmationFmt   = "We've received your quote request - %s"
	subjectContactInternalFmt     = "New contact message from %s"
	subjectContactConfirmationFmt = "Thanks for getting in touch with %s"
)
