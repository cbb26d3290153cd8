package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// RegexExtractor is the deterministic FieldExtractor. It covers the common
// tender formats shippers actually send; an LLM extractor can replace it
// behind the same interface without touching the pipeline.
type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

var _ FieldExtractor = (*RegexExtractor)(nil)

var (
	// "Dallas, TX 75201 to Houston, TX 77002", optionally led by "from"
	lanePattern    = regexp.MustCompile(`(?i)(?:from\s+)?([A-Za-z][A-Za-z .]*,\s*[A-Za-z]{2}(?:\s+\d{5})?)\s+to\s+([A-Za-z][A-Za-z .]*,\s*[A-Za-z]{2}(?:\s+\d{5})?)`)
	weightPattern  = regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?)\s*(?:lbs?|pounds)`)
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	usDatePattern  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	piecesPattern  = regexp.MustCompile(`(?i)(\d+)\s*(?:pallets?|pieces?|skids?)`)
	// "35,000 lbs of electronics" or "commodity: electronics"
	commodityOfPattern    = regexp.MustCompile(`(?i)(?:lbs?|pounds)\s+of\s+([A-Za-z][A-Za-z ]*)`)
	commodityLabelPattern = regexp.MustCompile(`(?i)commodity:?\s+([A-Za-z][A-Za-z ]*)`)
)

// equipmentAliases maps the phrasings shippers use onto canonical equipment
// names.
var equipmentAliases = []struct {
	marker    string
	canonical string
}{
	{"dry van", "Dry Van"},
	{"dryvan", "Dry Van"},
	{"refrigerated", "Reefer"},
	{"reefer", "Reefer"},
	{"flat bed", "Flatbed"},
	{"flatbed", "Flatbed"},
	{"van", "Dry Van"},
}

// ExtractFields scans the subject and body for shipment fields. Fields it
// cannot find stay nil; the validation layer decides what is missing.
func (e *RegexExtractor) ExtractFields(ctx context.Context, email *types.InboundEmail) (types.ShipmentFieldBag, error) {
	text := email.Subject + "\n" + email.BodyText
	var bag types.ShipmentFieldBag

	if m := lanePattern.FindStringSubmatch(text); m != nil {
		bag.PickupLocation = types.StrPtr(strings.TrimSpace(m[1]))
		bag.DeliveryLocation = types.StrPtr(strings.TrimSpace(m[2]))
	}

	if m := weightPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if w, err := strconv.ParseFloat(raw, 64); err == nil {
			bag.Weight = types.FloatPtr(w)
		}
	}

	if date := extractDate(text); date != "" {
		bag.PickupDate = types.StrPtr(date)
	}

	if equipment := extractEquipment(text); equipment != "" {
		bag.EquipmentType = types.StrPtr(equipment)
	}

	if commodity := extractCommodity(text); commodity != "" {
		bag.Commodity = types.StrPtr(commodity)
	}

	if m := piecesPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			bag.PieceCount = types.IntPtr(n)
		}
	}

	logger.GetLogger().Debugw("Extracted fields",
		"messageId", email.MessageID,
		"hasPickup", bag.PickupLocation != nil,
		"hasDelivery", bag.DeliveryLocation != nil,
		"hasWeight", bag.Weight != nil)
	return bag, nil
}

func extractDate(text string) string {
	if m := isoDatePattern.FindString(text); m != "" {
		return m
	}
	if m := usDatePattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return m[3] + "-" + pad2(month) + "-" + pad2(day)
		}
	}
	return ""
}

func extractEquipment(text string) string {
	lower := strings.ToLower(text)
	for _, alias := range equipmentAliases {
		if strings.Contains(lower, alias.marker) {
			return alias.canonical
		}
	}
	return ""
}

// commodityStopWords end a commodity phrase when the sentence runs on
// ("35,000 lbs of electronics on 18 pallets").
var commodityStopWords = map[string]bool{
	"on": true, "with": true, "from": true, "to": true,
	"in": true, "pickup": true, "delivery": true, "needs": true,
}

func extractCommodity(text string) string {
	for _, pattern := range []*regexp.Regexp{commodityLabelPattern, commodityOfPattern} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var words []string
		for _, word := range strings.Fields(m[1]) {
			if commodityStopWords[strings.ToLower(word)] {
				break
			}
			words = append(words, word)
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
	}
	return ""
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
