package vo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cartridge is the normalized Common Cartridge handed to the exporter.
type Cartridge struct {
	Title         string              `json:"title"`
	Org           string              `json:"org"`
	Outline       *OutlineNode        `json:"outline"`
	Resources     map[string]Resource `json:"resources"`
	ResourceIndex ResourceIndex       `json:"resourceIndex"`
}

// ResourceContent resolves a resource reference. Unknown references and
// resources of an unrecognized type report false.
func (c *Cartridge) ResourceContent(ref string) (Details, bool) {
	res, ok := c.Resources[ref]
	if !ok || res.Details == nil {
		return nil, false
	}
	return res.Details, true
}

// Resource wraps typed details for JSON transport as {"type": "...", ...}.
type Resource struct {
	Details Details
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var err error
	switch head.Type {
	case ContentTypeHTML:
		var d HTMLDetails
		err = json.Unmarshal(data, &d)
		r.Details = d
	case ContentTypeLink:
		var d LinkDetails
		err = json.Unmarshal(data, &d)
		r.Details = d
	case ContentTypeVideo:
		var d VideoDetails
		err = json.Unmarshal(data, &d)
		r.Details = d
	case ContentTypeExternalTool:
		var d struct {
			ExternalToolDetails
			CustomParameters CustomParameters `json:"custom_parameters"`
		}
		err = json.Unmarshal(data, &d)
		d.ExternalToolDetails.CustomParameters = d.CustomParameters
		r.Details = d.ExternalToolDetails
	case ContentTypeAssessment:
		var d AssessmentDetails
		err = json.Unmarshal(data, &d)
		r.Details = d
	case ContentTypeDiscussion:
		var d DiscussionDetails
		err = json.Unmarshal(data, &d)
		r.Details = d
	default:
		r.Details = nil
	}
	if err != nil {
		return fmt.Errorf("failed to decode %q resource: %w", head.Type, err)
	}
	return nil
}

// CustomParameters decodes a JSON object into key/value pairs keeping the
// source key order.
type CustomParameters []CustomParameter

func (p *CustomParameters) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("custom parameters must be an object, got %v", tok)
	}
	params := CustomParameters{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("custom parameter %q: %w", key, err)
		}
		params = append(params, CustomParameter{Key: key, Value: fmt.Sprint(value)})
	}
	*p = params
	return nil
}
