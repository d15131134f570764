package domain

import "strings"

// DefaultDocType is used when no document type rule matches.
const DefaultDocType = "unknown"

// keywordRule maps a filename substring to a metadata value.
// Rules are evaluated case-insensitively in declaration order.
type keywordRule struct {
	keyword string
	value   string
}

// docTypeRules classify documents by filename. First match wins.
var docTypeRules = []keywordRule{
	{"sustainability", "sustainability_report"},
	{"esg", "sustainability_report"},
	{"csr", "sustainability_report"},
	{"annual", "company_report"},
	{"quarterly", "company_report"},
	{"financial", "company_report"},
	{"esrs", "esrs_document"},
	{"european sustainability reporting", "esrs_document"},
}

// geographicRules detect the sea or ocean a document focuses on.
// First match wins; no match leaves the field unset.
var geographicRules = []keywordRule{
	{"baltic", "Baltic Sea"},
	{"north sea", "North Sea"},
	{"mediterranean", "Mediterranean Sea"},
	{"atlantic", "Atlantic Ocean"},
	{"pacific", "Pacific Ocean"},
	{"arctic", "Arctic Ocean"},
}

// topicRules tag ocean-sustainability topics. Every match contributes,
// in declaration order.
var topicRules = []keywordRule{
	{"seagrass", "seagrass_restoration"},
	{"coral", "coral_conservation"},
	{"biodiversity", "marine_biodiversity"},
	{"carbon", "blue_carbon"},
	{"plastic", "marine_pollution"},
	{"fishing", "sustainable_fisheries"},
	{"renewable", "offshore_renewable_energy"},
}

// FileMetadata holds the categorical tags derived from a filename.
type FileMetadata struct {
	DocType         string
	GeographicFocus string
	Topics          []string
}

// ExtractFileMetadata derives metadata tags from a filename by matching
// substrings against the declared rule tables. It is a pure function:
// the same filename always yields the same metadata.
func ExtractFileMetadata(filename string) FileMetadata {
	lower := strings.ToLower(filename)

	meta := FileMetadata{DocType: DefaultDocType, Topics: []string{}}

	for _, rule := range docTypeRules {
		if strings.Contains(lower, rule.keyword) {
			meta.DocType = rule.value
			break
		}
	}

	for _, rule := range geographicRules {
		if strings.Contains(lower, rule.keyword) {
			meta.GeographicFocus = rule.value
			break
		}
	}

	seen := make(map[string]bool, len(topicRules))
	for _, rule := range topicRules {
		if strings.Contains(lower, rule.keyword) && !seen[rule.value] {
			meta.Topics = append(meta.Topics, rule.value)
			seen[rule.value] = true
		}
	}

	return meta
}

// Map renders the metadata as the open key/value form persisted with
// documents and chunks. geographic_focus is omitted when unset; topics is
// always present, possibly empty.
func (m FileMetadata) Map() map[string]any {
	out := map[string]any{
		"doc_type": m.DocType,
		"topics":   m.Topics,
	}
	if m.GeographicFocus != "" {
		out["geographic_focus"] = m.GeographicFocus
	}
	return out
}
