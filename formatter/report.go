package formatter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ipscope/model"
	"ipscope/processing"
)

const (
	bannerWidth  = 80
	ruleWidth    = 60
	labelWidth   = 25
	reportTitle  = "IP ADDRESS INFORMATION REPORT"
	timeLayout   = "2006-01-02 15:04:05"
	fileTimeName = "20060102_150405"
)

// ReportText renders a normalized result as a plain-text report. The layout
// is deterministic: given the same result and timestamp the output is
// byte-identical, so exported reports can be diffed across runs.
func ReportText(result *model.LookupResult, generatedAt time.Time) string {
	var b strings.Builder
	banner := strings.Repeat("=", bannerWidth)

	b.WriteString(banner + "\n")
	b.WriteString(reportTitle + "\n")
	b.WriteString(banner + "\n\n")

	for _, cat := range result.Categories() {
		b.WriteString("\n▶ " + strings.ToUpper(cat.Name) + "\n")
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, label := range processing.FieldOrder(cat.Name) {
			v, ok := cat.Fields[label]
			if !ok {
				continue
			}
			b.WriteString(padLabel(label) + " " + fmt.Sprintf("%v", v) + "\n")
		}
	}

	b.WriteString("\n" + banner + "\n")
	b.WriteString("Report generated at: " + generatedAt.Format(timeLayout) + "\n")
	return b.String()
}

// padLabel dot-pads a field label to the minimum report column width.
func padLabel(label string) string {
	if pad := labelWidth - len(label); pad > 0 {
		return label + strings.Repeat(".", pad)
	}
	return label
}

// ToJSON serializes a normalized result as pretty-printed JSON. The output
// round-trips through FromJSON into a structurally equal result.
func ToJSON(result *model.LookupResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not serialize lookup result: %w", err)
	}
	return string(data), nil
}

// FromJSON reconstructs a result previously produced by ToJSON.
func FromJSON(data []byte) (*model.LookupResult, error) {
	var result model.LookupResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("could not parse lookup result: %w", err)
	}
	return &result, nil
}

// ExportFilename builds the timestamped default export filename,
// ip_info_YYYYMMDD_HHMMSS with the given extension.
func ExportFilename(ext string, at time.Time) string {
	return fmt.Sprintf("ip_info_%s.%s", at.Format(fileTimeName), ext)
}
