package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evyataryagoni/wataxrate/internal/models"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

func writeTaxInfo(w io.Writer, format outputFormat, q models.AddressQuery, info *models.TaxInfo) error {
	switch format {
	case formatJSON:
		return writeJSON(w, info)
	case formatYAML:
		return writeYAML(w, info)
	default:
		_, err := fmt.Fprint(w, renderTaxInfo(q, info))
		return err
	}
}

func writeHistory(w io.Writer, format outputFormat, records []models.LookupRecord) error {
	switch format {
	case formatJSON:
		return writeJSON(w, models.RecentLookupsResponse{Count: len(records), Lookups: records})
	case formatYAML:
		return writeYAML(w, models.RecentLookupsResponse{Count: len(records), Lookups: records})
	default:
		_, err := fmt.Fprint(w, renderHistory(records))
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
