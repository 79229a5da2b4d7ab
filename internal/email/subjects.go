package email

const (
	subjectResultsFmt    = "Your revenue leak report: %s at risk annually"
	subjectSalesAlertFmt = "High-value lead: %s (score %d)"
)
