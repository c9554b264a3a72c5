// Package normalize turns loosely structured voice-agent payloads into the
// canonical order request consumed by the fulfillment service. It performs
// no I/O.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"medorder/internal/domain"
)

// DefaultCountryCode is the dialing prefix applied to bare 10-digit numbers.
const DefaultCountryCode = "91"

// PlaceholderCustomerName replaces an empty customer name.
const PlaceholderCustomerName = "Customer"

// DefaultLanguage is assumed when the agent does not report one.
const DefaultLanguage = "hindi"

const localDigits = 10

var digitRun = regexp.MustCompile(`[0-9]+`)

// VoiceOrder is the payload as delivered by a voice-agent platform.
// Phone and item values may arrive as JSON strings or numbers.
type VoiceOrder struct {
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   any              `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address"`
	Medicines       []map[string]any `json:"medicines"`
	Language        string           `json:"language"`
	Transcript      string           `json:"conversation_transcript"`
	IdempotencyKey  string           `json:"idempotency_key"`
}

// Item is one canonical requested line.
type Item struct {
	Name      string
	Quantity  int64
	Packaging domain.Packaging
}

// Order is the canonical voice request.
type Order struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []Item
	Language        string
	Transcript      string
	IdempotencyKey  string
	// Warnings describe lossy decisions taken while normalizing.
	Warnings []string
}

// Normalizer holds the locale settings used for phone canonicalization.
type Normalizer struct {
	countryCode string
}

func New(countryCode string) *Normalizer {
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &Normalizer{countryCode: countryCode}
}

// Phone strips everything but digits and applies the country prefix.
// Ten digits get the local country code, more than ten are taken as
// already international, fewer are zero-padded to ten first. A missing
// number yields an all-zero placeholder.
func (n *Normalizer) Phone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == localDigits:
		return "+" + n.countryCode + digits
	case len(digits) > localDigits:
		return "+" + digits
	default:
		return "+" + n.countryCode + strings.Repeat("0", localDigits-len(digits)) + digits
	}
}

// Quantity extracts the first run of decimal digits from raw. When raw has
// no digits the quantity defaults to 1 and guessed is true; word numerals
// such as "five" are not interpreted. Values below 1 or too large to parse
// also fall back to 1 with guessed set.
func Quantity(raw string) (qty int64, guessed bool) {
	run := digitRun.FindString(raw)
	if run == "" {
		return 1, true
	}
	v, err := strconv.ParseInt(run, 10, 64)
	if err != nil || v < 1 {
		return 1, true
	}
	return v, false
}

// Packaging returns the first recognized packaging keyword contained in
// raw, or strip.
func Packaging(raw string) domain.Packaging {
	s := strings.ToLower(raw)
	for _, p := range domain.Packagings {
		if strings.Contains(s, string(p)) {
			return p
		}
	}
	return domain.PackagingStrip
}

// CustomerName trims name and substitutes a placeholder for blanks.
func CustomerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return PlaceholderCustomerName
	}
	return name
}

// rawItem accepts the key spellings seen from different agent platforms.
type rawItem struct {
	Name          string `mapstructure:"name"`
	Medicine      string `mapstructure:"medicine"`
	MedicineName  string `mapstructure:"medicine_name"`
	Quantity      string `mapstructure:"quantity"`
	Qty           string `mapstructure:"qty"`
	Packaging     string `mapstructure:"packaging"`
	PackagingType string `mapstructure:"packaging_type"`
	Pack          string `mapstructure:"pack"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func decodeItem(in map[string]any) (rawItem, error) {
	var out rawItem
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(in); err != nil {
		return out, err
	}
	return out, nil
}

// VoiceOrder converts a raw agent payload into the canonical request.
// Items without a usable name are dropped and reported in Warnings.
func (n *Normalizer) VoiceOrder(in VoiceOrder) Order {
	out := Order{
		CustomerName:    CustomerName(in.CustomerName),
		CustomerPhone:   n.Phone(cast.ToString(in.CustomerPhone)),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		Language:        strings.ToLower(strings.TrimSpace(in.Language)),
		Transcript:      in.Transcript,
		IdempotencyKey:  strings.TrimSpace(in.IdempotencyKey),
	}
	if out.Language == "" {
		out.Language = DefaultLanguage
	}

	for i, m := range in.Medicines {
		raw, err := decodeItem(m)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("item %d is malformed and was dropped", i+1))
			continue
		}
		name := strings.TrimSpace(firstNonEmpty(raw.Name, raw.Medicine, raw.MedicineName))
		if name == "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("item %d has no medicine name and was dropped", i+1))
			continue
		}
		qtyText := firstNonEmpty(raw.Quantity, raw.Qty)
		qty, guessed := Quantity(qtyText)
		if guessed && strings.TrimSpace(qtyText) != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("quantity %q for %s was not understood; assumed 1", qtyText, name))
		}
		out.Items = append(out.Items, Item{
			Name:      name,
			Quantity:  qty,
			Packaging: Packaging(firstNonEmpty(raw.Packaging, raw.PackagingType, raw.Pack)),
		})
	}
	return out
}

// Payload renders o back into the raw agent shape. Normalizing the result
// yields o again.
func (o Order) Payload() VoiceOrder {
	meds := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		meds = append(meds, map[string]any{
			"name":      it.Name,
			"quantity":  strconv.FormatInt(it.Quantity, 10),
			"packaging": string(it.Packaging),
		})
	}
	return VoiceOrder{
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Medicines:       meds,
		Language:        o.Language,
		Transcript:      o.Transcript,
		IdempotencyKey:  o.IdempotencyKey,
	}
}
