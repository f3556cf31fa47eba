package enums

// OrderSource records where an order came from. It is provenance only, so
// unknown values are stored as given.
type OrderSource string

const (
	OrderSourceWebhook OrderSource = "Webhook"
	OrderSourceSheet   OrderSource = "Google Sheet"
	OrderSourceManual  OrderSource = "Manual"
)

func (s OrderSource) String() string {
	return string(s)
}
