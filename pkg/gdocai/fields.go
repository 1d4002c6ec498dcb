package gdocai

import (
	"strconv"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/docsift/pkg/conditions"
	"github.com/gardar/docsift/pkg/geometry"
)

// Field sources recorded in provenance
const (
	SourceFormField = "form_field"
	SourceEntity    = "entity"
)

// Provenance locates an extracted field in the source document
type Provenance struct {
	Source string        `json:"source"`
	Page   int           `json:"page,omitempty"`
	Box    *geometry.Box `json:"box,omitempty"`
}

// FieldsFromProto builds a field map from the form fields of every page
// followed by the custom extractor entities. Nested entity properties are
// flattened as parent.child. When a name occurs twice the first occurrence
// is kept.
func FieldsFromProto(doc *documentaipb.Document) *conditions.FieldMap {
	fields := conditions.NewFieldMap()
	if doc == nil {
		return fields
	}

	for i, page := range doc.Pages {
		num := int(page.PageNumber)
		if num < 1 {
			num = i + 1
		}
		for _, field := range page.FormFields {
			name := strings.TrimSpace(textFromLayout(field.FieldName, doc.Text))
			name = strings.TrimSpace(strings.TrimSuffix(name, ":"))
			if name == "" {
				continue
			}

			entry := &conditions.FieldEntry{
				Block: &Provenance{
					Source: SourceFormField,
					Page:   num,
					Box:    boxFromLayout(field.FieldValue, page.Dimension),
				},
			}
			if field.FieldValue != nil {
				entry.Value = strings.TrimSpace(textFromLayout(field.FieldValue, doc.Text))
				entry.Confidence = confidence(field.FieldValue.Confidence)
			}
			setFirst(fields, name, entry)
		}
	}

	for _, entity := range doc.Entities {
		addEntity(fields, doc, "", entity)
	}
	return fields
}

// addEntity adds an entity and, recursively, its properties. An entity with
// properties is only added itself when it carries text.
func addEntity(fields *conditions.FieldMap, doc *documentaipb.Document, prefix string, entity *documentaipb.Document_Entity) {
	if entity.Type == "" {
		return
	}
	name := entity.Type
	if prefix != "" {
		name = prefix + "." + entity.Type
	}

	value := entity.MentionText
	if value == "" && entity.NormalizedValue != nil {
		value = entity.NormalizedValue.Text
	}

	if len(entity.Properties) == 0 || value != "" {
		setFirst(fields, name, &conditions.FieldEntry{
			Value:      value,
			Confidence: confidence(entity.Confidence),
			Block:      entityProvenance(doc, entity),
		})
	}

	for _, prop := range entity.Properties {
		addEntity(fields, doc, name, prop)
	}
}

func entityProvenance(doc *documentaipb.Document, entity *documentaipb.Document_Entity) *Provenance {
	prov := &Provenance{Source: SourceEntity}
	if entity.PageAnchor == nil || len(entity.PageAnchor.PageRefs) == 0 {
		return prov
	}

	ref := entity.PageAnchor.PageRefs[0]
	idx := int(ref.Page) // page refs are zero-based
	prov.Page = idx + 1

	var dim *documentaipb.Document_Page_Dimension
	if idx >= 0 && idx < len(doc.Pages) {
		dim = doc.Pages[idx].Dimension
	}
	prov.Box = boxFromPoly(ref.BoundingPoly, dim)
	return prov
}

func setFirst(fields *conditions.FieldMap, name string, entry *conditions.FieldEntry) {
	if _, exists := fields.Get(name); exists {
		return
	}
	fields.Set(name, entry)
}

// confidence widens a float32 score without exposing float32 rounding noise
func confidence(c float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(c), 'g', -1, 32), 64)
	if err != nil {
		return float64(c)
	}
	return v
}
