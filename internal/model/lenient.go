package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

var listSeparators = regexp.MustCompile(`[,，、;；\n]+`)

// UnmarshalJSON decodes each field on its own so one field of the wrong
// shape does not lose the rest of the record. List fields accept a
// separated string such as "人、木"; text fields accept an array of strings.
func (r *CharacterRecord) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return nil
	}

	*r = CharacterRecord{
		Character:         textField(fields["character"]),
		Type:              textField(fields["type"]),
		Explanation:       textField(fields["explanation"]),
		Components:        listField(fields["components"]),
		EvolutionStages:   listField(fields["evolution"]),
		RelatedCharacters: listField(fields["relatedCharacters"]),
		CommonWords:       listField(fields["commonWords"]),
	}
	if raw, ok := fields["level"]; ok {
		if err := r.Level.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	return nil
}

func textField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if list := listField(raw); len(list) > 0 {
		return strings.Join(list, "、")
	}
	return ""
}

// listField keeps the string and number elements of an array, or splits a
// single string on list separators. Any other shape yields nil.
func listField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var out []string
		for _, part := range listSeparators.Split(s, -1) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var v any
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		switch v := v.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		case float64:
			out = append(out, strings.TrimSpace(string(item)))
		}
	}
	return out
}
