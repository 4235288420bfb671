package fields

import "github.com/unicef/hope-grievance/internal/models"

// Schema indexes field attributes by name. It is read-only after
// construction and may be shared between sessions.
type Schema struct {
	attrs []models.FieldAttribute
	index map[string]int
}

// NewSchema builds a Schema. Later duplicates of a name win.
func NewSchema(attrs []models.FieldAttribute) *Schema {
	s := &Schema{
		attrs: append([]models.FieldAttribute(nil), attrs...),
		index: make(map[string]int, len(attrs)),
	}
	for i, a := range s.attrs {
		s.index[a.Name] = i
	}
	return s
}

// Attribute returns the attribute named name.
func (s *Schema) Attribute(name string) (models.FieldAttribute, bool) {
	if s == nil {
		return models.FieldAttribute{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return models.FieldAttribute{}, false
	}
	return s.attrs[i], true
}

// Kind classifies the attribute named name. Unknown names are text.
func (s *Schema) Kind(name string, opts ...Option) Kind {
	attr, ok := s.Attribute(name)
	if !ok {
		return KindText
	}
	return Classify(attr, opts...)
}

// Attributes returns a copy of all attributes in load order.
func (s *Schema) Attributes() []models.FieldAttribute {
	if s == nil {
		return nil
	}
	return append([]models.FieldAttribute(nil), s.attrs...)
}

// Required returns the attributes marked required.
func (s *Schema) Required() []models.FieldAttribute {
	if s == nil {
		return nil
	}
	var out []models.FieldAttribute
	for _, a := range s.attrs {
		if a.Required {
			out = append(out, a)
		}
	}
	return out
}
