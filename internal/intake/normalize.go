package intake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
)

// Source selects the alias table used to read a raw payload.
type Source string

const (
	SourceWebhook Source = "webhook"
	SourceSheet   Source = "sheet"
)

// OrderSource maps the intake channel to the provenance stored on the order.
func (s Source) OrderSource() enums.OrderSource {
	if s == SourceSheet {
		return enums.OrderSourceSheet
	}
	return enums.OrderSourceWebhook
}

// Record is a validated, channel-neutral order request.
type Record struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	ProductSKU      string
	Quantity        int
	OrderSource     enums.OrderSource
	Notes           string
}

const (
	fieldCustomerName    = "customer_name"
	fieldCustomerPhone   = "customer_phone"
	fieldCustomerAddress = "customer_address"
	fieldProductSKU      = "product_sku"
	fieldQuantity        = "quantity"
	fieldNotes           = "notes"
)

var webhookAliases = map[string][]string{
	fieldCustomerName:    {"customer_name", "name"},
	fieldCustomerPhone:   {"customer_phone", "phone"},
	fieldCustomerAddress: {"customer_address", "address"},
	fieldProductSKU:      {"product_sku", "sku"},
	fieldQuantity:        {"quantity"},
	fieldNotes:           {"notes", "comments"},
}

var sheetAliases = map[string][]string{
	fieldCustomerName:    {"اسم العميل", "Customer Name"},
	fieldCustomerPhone:   {"رقم الهاتف", "Phone"},
	fieldCustomerAddress: {"العنوان", "Address"},
	fieldProductSKU:      {"رمز المنتج", "Product SKU"},
	fieldQuantity:        {"الكمية", "Quantity"},
	fieldNotes:           {"ملاحظات", "Notes"},
}

var requiredFields = []string{fieldCustomerName, fieldCustomerPhone, fieldCustomerAddress, fieldProductSKU}

// Normalize resolves aliases and validates a raw payload. On failure it
// returns false and a message naming the offending field. It never touches
// storage.
func Normalize(source Source, raw map[string]any) (*Record, bool, string) {
	aliases := webhookAliases
	if source == SourceSheet {
		aliases = sheetAliases
	}

	values := make(map[string]string, len(aliases))
	for field, keys := range aliases {
		values[field] = firstValue(raw, keys)
	}

	for _, field := range requiredFields {
		if values[field] == "" {
			return nil, false, fmt.Sprintf("field %s is required", field)
		}
	}

	if !ValidPhone(values[fieldCustomerPhone]) {
		return nil, false, fmt.Sprintf("field %s is not a valid phone number", fieldCustomerPhone)
	}

	quantity := 1
	if q := values[fieldQuantity]; q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			return nil, false, fmt.Sprintf("field %s must be an integer", fieldQuantity)
		}
		quantity = parsed
	}
	if quantity <= 0 {
		return nil, false, fmt.Sprintf("field %s must be greater than zero", fieldQuantity)
	}

	return &Record{
		CustomerName:    values[fieldCustomerName],
		CustomerPhone:   values[fieldCustomerPhone],
		CustomerAddress: values[fieldCustomerAddress],
		ProductSKU:      values[fieldProductSKU],
		Quantity:        quantity,
		OrderSource:     source.OrderSource(),
		Notes:           values[fieldNotes],
	}, true, ""
}

func firstValue(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return strings.TrimSpace(t.String())
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
