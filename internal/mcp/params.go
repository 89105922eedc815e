package mcp

import (
	"encoding/json"
	"sort"
)

// UnknownField represents a parameter that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// OutlineParams are the arguments of the navigation_tree tool.
type OutlineParams struct {
	File          string `json:"file"`
	Text          string `json:"text,omitempty"`
	NumberedItems *bool  `json:"numbered_items,omitempty"`
	Format        string `json:"format,omitempty"`
	MaxDepth      int    `json:"max_depth,omitempty"`

	Warnings []UnknownField `json:"-"`
}

// UnmarshalJSON accepts unknown fields and records them as warnings. The
// legacy name "arrays_tuples_numbered_items" is an alias of numbered_items.
func (p *OutlineParams) UnmarshalJSON(data []byte) error {
	type Alias OutlineParams

	known := map[string]struct{}{
		"file": {}, "text": {}, "numbered_items": {}, "format": {}, "max_depth": {},
		"arrays_tuples_numbered_items": {},
	}
	raw, warnings, err := collectUnknownFields(data, known)
	if err != nil {
		return err
	}
	if v, ok := raw["arrays_tuples_numbered_items"]; ok {
		if _, set := raw["numbered_items"]; !set {
			raw["numbered_items"] = v
		}
		delete(raw, "arrays_tuples_numbered_items")
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(normalized, &alias); err != nil {
		return err
	}
	*p = OutlineParams(alias)
	p.Warnings = warnings
	return nil
}

// LabelsParams are the arguments of the markup_labels tool.
type LabelsParams struct {
	File string `json:"file"`
	Text string `json:"text,omitempty"`

	Warnings []UnknownField `json:"-"`
}

func (p *LabelsParams) UnmarshalJSON(data []byte) error {
	type Alias LabelsParams

	_, warnings, err := collectUnknownFields(data, map[string]struct{}{"file": {}, "text": {}})
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = LabelsParams(alias)
	p.Warnings = warnings
	return nil
}

// ModuleParams are the arguments of the module_text tool.
type ModuleParams struct {
	NumberedItems *bool `json:"numbered_items,omitempty"`
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the known set. Warnings are sorted by name.
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; !ok {
			warnings = append(warnings, decodeUnknownField(key, value))
		}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Name < warnings[j].Name })
	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}
