package processing

import (
	"fmt"
	"strconv"
	"strings"

	"ipscope/model"
)

// categoryFields is the closed display schema: the fields of each category
// in rendering order. Normalization never emits a label outside this map.
var categoryFields = map[string][]string{
	"basic": {
		"IP Address", "IP Version", "City", "Region", "Country",
		"Country Code", "Continent", "Postal Code", "Latitude", "Longitude",
	},
	"connection": {
		"ISP", "Organization", "ASN", "ASN Organization", "Connection Type",
	},
	"timezone": {
		"Timezone Name", "Abbreviation", "GMT Offset", "Current Time", "Is DST",
	},
	"security": {
		"Is VPN", "Is Proxy", "Is Tor", "Is Relay", "Threat Level",
	},
	"currency": {
		"Currency Name", "Currency Code", "Currency Symbol",
	},
	"flag": {
		"Flag Emoji", "Flag Unicode", "Flag PNG", "Flag SVG",
	},
}

// FieldOrder returns the display order of a category's fields.
func FieldOrder(category string) []string {
	return categoryFields[category]
}

// Normalize applies the sentinel substitution rule to a label-keyed field
// map: every field of the category's enumeration that is absent, nil, the
// empty string, or the literal "None" becomes "N/A"; anything else passes
// through unchanged. Keys outside the enumeration are dropped. Applying
// Normalize to its own output yields an identical map.
func Normalize(category string, fields model.FieldMap) model.FieldMap {
	labels, ok := categoryFields[category]
	if !ok {
		return nil
	}
	out := make(model.FieldMap, len(labels))
	for _, label := range labels {
		out[label] = NormalizeValue(fields[label])
	}
	return out
}

// NormalizeValue implements the single-value substitution rule.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return model.NA
	case string:
		if val == "" || val == "None" {
			return model.NA
		}
		return val
	default:
		return v
	}
}

// ValidateResponse reports whether a provider document carries the one
// field every usable response must have.
func ValidateResponse(raw model.RawData) bool {
	if len(raw) == 0 {
		return false
	}
	_, ok := raw["ip_address"]
	return ok
}

// ProcessAll maps a provider document into the normalized display
// categories. It returns an error for a document that fails
// ValidateResponse; partial documents are not an error, missing fields
// simply normalize to "N/A".
func ProcessAll(raw model.RawData) (*model.LookupResult, error) {
	if !ValidateResponse(raw) {
		return nil, fmt.Errorf("provider response is missing the ip_address field")
	}
	return &model.LookupResult{
		Basic:      Normalize("basic", extractBasic(raw)),
		Connection: Normalize("connection", extractConnection(raw)),
		Timezone:   Normalize("timezone", extractTimezone(raw)),
		Security:   Normalize("security", extractSecurity(raw)),
		Currency:   Normalize("currency", extractCurrency(raw)),
		Flag:       Normalize("flag", extractFlag(raw)),
	}, nil
}

func extractBasic(raw model.RawData) model.FieldMap {
	addr, _ := raw["ip_address"].(string)
	return model.FieldMap{
		"IP Address":   raw["ip_address"],
		"IP Version":   DetermineIPVersion(addr),
		"City":         raw["city"],
		"Region":       raw["region"],
		"Country":      raw["country"],
		"Country Code": raw["country_code"],
		"Continent":    raw["continent"],
		"Postal Code":  raw["postal_code"],
		"Latitude":     stringify(raw["latitude"]),
		"Longitude":    stringify(raw["longitude"]),
	}
}

func extractConnection(raw model.RawData) model.FieldMap {
	conn := raw.Section("connection")
	return model.FieldMap{
		"ISP":              conn["isp_name"],
		"Organization":     conn["organization_name"],
		"ASN":              stringify(conn["autonomous_system_number"]),
		"ASN Organization": conn["autonomous_system_organization"],
		"Connection Type":  conn["connection_type"],
	}
}

func extractTimezone(raw model.RawData) model.FieldMap {
	tz := raw.Section("timezone")
	return model.FieldMap{
		"Timezone Name": tz["name"],
		"Abbreviation":  tz["abbreviation"],
		"GMT Offset":    stringify(tz["gmt_offset"]),
		"Current Time":  tz["current_time"],
		"Is DST":        stringify(tz["is_dst"]),
	}
}

func extractSecurity(raw model.RawData) model.FieldMap {
	sec := raw.Section("security")
	return model.FieldMap{
		"Is VPN":       boolFlag(sec, "is_vpn"),
		"Is Proxy":     boolFlag(sec, "is_proxy"),
		"Is Tor":       boolFlag(sec, "is_tor"),
		"Is Relay":     boolFlag(sec, "is_relay"),
		"Threat Level": ThreatLevel(sec),
	}
}

func extractCurrency(raw model.RawData) model.FieldMap {
	cur := raw.Section("currency")
	return model.FieldMap{
		"Currency Name":   cur["currency_name"],
		"Currency Code":   cur["currency_code"],
		"Currency Symbol": cur["currency_symbol"],
	}
}

func extractFlag(raw model.RawData) model.FieldMap {
	flag := raw.Section("flag")
	return model.FieldMap{
		"Flag Emoji":   flag["emoji"],
		"Flag Unicode": flag["unicode"],
		"Flag PNG":     flag["png"],
		"Flag SVG":     flag["svg"],
	}
}

// DetermineIPVersion reports the address family of a display address. This
// is the coarse display rule, not the validator: a colon means IPv6, a dot
// means IPv4, anything else is unknown.
func DetermineIPVersion(addr string) string {
	switch {
	case strings.ContainsRune(addr, ':'):
		return "IPv6"
	case strings.ContainsRune(addr, '.'):
		return "IPv4"
	default:
		return "Unknown"
	}
}

// threatFlags lists the risk indicators in report order.
var threatFlags = []struct {
	key  string
	name string
}{
	{"is_vpn", "VPN"},
	{"is_proxy", "Proxy"},
	{"is_tor", "Tor"},
	{"is_relay", "Relay"},
}

// ThreatLevel derives the coarse severity label from the security flags.
// No flags is "Clean", one flag is "Low (...)", two or more is
// "Medium (Multiple: ...)". Downstream badge styling keys off the "Clean"
// and "Low" substrings, so the label wording is part of the contract.
func ThreatLevel(sec map[string]any) string {
	var threats []string
	for _, f := range threatFlags {
		if b, _ := sec[f.key].(bool); b {
			threats = append(threats, f.name)
		}
	}
	switch len(threats) {
	case 0:
		return "Clean"
	case 1:
		return fmt.Sprintf("Low (%s detected)", threats[0])
	default:
		return fmt.Sprintf("Medium (Multiple: %s)", strings.Join(threats, ", "))
	}
}

// boolFlag reads a boolean field, treating anything absent or non-boolean
// as false rather than N/A: a missing risk flag is an unasserted one.
func boolFlag(sec map[string]any, key string) bool {
	b, _ := sec[key].(bool)
	return b
}

// stringify renders numeric and boolean raw values the way the display
// layer expects, leaving strings and absent values alone for the sentinel
// rule to handle.
func stringify(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
