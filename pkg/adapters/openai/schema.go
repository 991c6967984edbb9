package openai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/maitre/pkg/domain"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	minPartySize = 1
	maxPartySize = 20
)

// bookingInfo is the structured output requested for field extraction.
type bookingInfo struct {
	RestaurantName  *string `json:"restaurant_name" jsonschema:"description=Name of the restaurant"`
	Date            *string `json:"date" jsonschema:"description=Date in YYYY-MM-DD format"`
	Time            *string `json:"time" jsonschema:"description=Time in HH:MM 24-hour format"`
	PartySize       *int    `json:"party_size" jsonschema:"description=Number of people"`
	CustomerName    *string `json:"customer_name" jsonschema:"description=Customer's full name"`
	Phone           *string `json:"phone" jsonschema:"description=Phone number"`
	ResponseMessage string  `json:"response_message" jsonschema:"description=What to say to the user. Acknowledge what you collected and ask for missing info. Never say the booking is confirmed."`
}

// confirmationResponse is the structured output requested for classification.
type confirmationResponse struct {
	UserWantsToProceed bool    `json:"user_wants_to_proceed" jsonschema:"description=True if the user confirmed (yes/correct/looks good); false if they want changes"`
	RequestedChanges   *string `json:"requested_changes" jsonschema:"description=What the user wants to change; required when user_wants_to_proceed is false"`
}

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

var (
	bookingInfoSchema  = reflector.Reflect(&bookingInfo{})
	confirmationSchema = reflector.Reflect(&confirmationResponse{})
)

// decodeStructured parses the model's JSON reply into out. Decoding is weakly
// typed so "4" becomes 4 and a null leaves a pointer field nil.
func decodeStructured(content string, out any) error {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return fmt.Errorf("model reply is not a JSON object: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("model reply does not match schema: %w", err)
	}
	return nil
}

// toDetails converts extracted values into booking fields, dropping any that
// fail format or range checks. Dropped values stay absent so the next turn asks again.
func (b bookingInfo) toDetails(now time.Time) (domain.BookingDetails, []string) {
	var d domain.BookingDetails
	var rejected []string

	d.RestaurantName = nonEmpty(b.RestaurantName)
	d.CustomerName = nonEmpty(b.CustomerName)
	d.Phone = nonEmpty(b.Phone)

	if v := nonEmpty(b.Date); v != nil {
		if date, ok := normalizeDate(*v, now); ok {
			d.Date = &date
		} else {
			rejected = append(rejected, domain.FieldDate)
		}
	}
	if v := nonEmpty(b.Time); v != nil {
		if t, ok := normalizeTime(*v); ok {
			d.Time = &t
		} else {
			rejected = append(rejected, domain.FieldTime)
		}
	}
	if b.PartySize != nil {
		if *b.PartySize >= minPartySize && *b.PartySize <= maxPartySize {
			d.PartySize = domain.Ptr(*b.PartySize)
		} else {
			rejected = append(rejected, domain.FieldPartySize)
		}
	}
	return d, rejected
}

func nonEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "missing") {
		return nil
	}
	return &v
}

// normalizeDate accepts YYYY-MM-DD dates that are not before today.
func normalizeDate(s string, now time.Time) (string, bool) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", false
	}
	today := now.Format(dateLayout)
	out := d.Format(dateLayout)
	if out < today {
		return "", false
	}
	return out, true
}

// normalizeTime accepts H:MM or HH:MM on a 24-hour clock and pads the hour.
func normalizeTime(s string) (string, bool) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return "", false
		}
	}
	return t.Format(timeLayout), true
}
