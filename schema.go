package instructor

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type SchemaType string

const (
	TypeObject  SchemaType = "OBJECT"
	TypeArray   SchemaType = "ARRAY"
	TypeString  SchemaType = "STRING"
	TypeNumber  SchemaType = "NUMBER"
	TypeInteger SchemaType = "INTEGER"
	TypeBoolean SchemaType = "BOOLEAN"
)

// Schema is the responseSchema tree sent to the model. A node is immutable
// once NewSchema returns and may be shared between several parents.
type Schema struct {
	Type             SchemaType                              `json:"type"`
	Format           Format                                  `json:"format,omitempty"`
	Description      string                                  `json:"description,omitempty"`
	Nullable         bool                                    `json:"nullable,omitempty"`
	Enum             []string                                `json:"enum,omitempty"`
	Properties       *orderedmap.OrderedMap[string, *Schema] `json:"properties,omitempty"`
	PropertyOrdering []string                                `json:"propertyOrdering,omitempty"`
	Required         []string                                `json:"required,omitempty"`
	Items            *Schema                                 `json:"items,omitempty"`

	id     string
	fields []schemaField
}

// schemaField maps a wire property name to the key encoding/json decodes
// into the Go field.
type schemaField struct {
	name string
	key  string
}

// Enumerator is implemented by types whose values are a fixed set of wire
// literals.
type Enumerator interface {
	EnumValues() []string
}

// PropertyNamer renames every member of the implementing type. A member
// level gemini or json tag wins over it.
type PropertyNamer interface {
	PropertyName() string
}

// PropertyIgnorer excludes every member of the implementing type.
type PropertyIgnorer interface {
	IgnoreProperty() bool
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

type SchemaOption func(c *schemaCompiler)

// WithSchemaRecursionDepth sets how many times one type may appear on a
// single path of the schema tree.
func WithSchemaRecursionDepth(depth int) SchemaOption {
	return func(c *schemaCompiler) {
		if depth > 0 {
			c.depth = depth
		}
	}
}

type schemaCompiler struct {
	depth    int
	visiting map[reflect.Type]int
	done     map[reflect.Type]*Schema
}

// NewSchema compiles t. Recursive types are unrolled up to the recursion
// depth; the member that would go deeper is left out of its parent.
func NewSchema(t reflect.Type, opts ...SchemaOption) (*Schema, error) {
	if t == nil {
		return nil, NewError(SchemaError, fmt.Errorf("nil type"))
	}
	c := &schemaCompiler{
		depth:    DefaultRecursionDepth,
		visiting: make(map[reflect.Type]int),
		done:     make(map[reflect.Type]*Schema),
	}
	for _, opt := range opts {
		opt(c)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s, _, err := c.compile(t, memberTag{})
	if err != nil {
		return nil, NewError(SchemaError, err)
	}
	if s == nil {
		return nil, NewError(SchemaError, fmt.Errorf("%s: recursion depth exhausted", t))
	}
	cp := *s
	cp.id = schemaID(t)
	return &cp, nil
}

func (c *schemaCompiler) compile(t reflect.Type, tag memberTag) (*Schema, bool, error) {
	nullable := false
	for t.Kind() == reflect.Ptr {
		nullable = true
		t = t.Elem()
	}
	switch tag.null {
	case NullForce:
		nullable = true
	case NullNever:
		nullable = false
	}

	s, truncated, err := c.compileType(t)
	if err != nil || s == nil {
		return nil, truncated, err
	}
	if nullable == s.Nullable && tag.format == "" && tag.description == "" && len(tag.enum) == 0 {
		return s, truncated, nil
	}
	cp := *s
	cp.Nullable = nullable
	if tag.format != "" {
		cp.Format = tag.format
	}
	if tag.description != "" {
		cp.Description = tag.description
	}
	if len(tag.enum) > 0 {
		cp.Type = TypeString
		cp.Enum = tag.enum
	}
	return &cp, truncated, nil
}

func (c *schemaCompiler) compileType(t reflect.Type) (*Schema, bool, error) {
	if enum, ok := typeAs[Enumerator](t); ok {
		return &Schema{Type: TypeString, Enum: enum.EnumValues()}, false, nil
	}
	switch t {
	case timeType:
		return &Schema{Type: TypeString, Format: FormatDateTime}, false, nil
	case uuidType:
		return &Schema{Type: TypeString, Format: FormatUUID}, false, nil
	}
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: TypeString}, false, nil
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}, false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeInteger}, false, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeNumber}, false, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString, Format: FormatByte}, false, nil
		}
		items, truncated, err := c.compile(t.Elem(), memberTag{})
		if err != nil || items == nil {
			return nil, truncated, err
		}
		return &Schema{Type: TypeArray, Items: items}, truncated, nil
	case reflect.Struct:
		return c.compileStruct(t)
	}
	return nil, false, fmt.Errorf("%s: unsupported kind %s", t, t.Kind())
}

func (c *schemaCompiler) compileStruct(t reflect.Type) (*Schema, bool, error) {
	if s, ok := c.done[t]; ok {
		return s, false, nil
	}
	if c.visiting[t] >= c.depth {
		return nil, true, nil
	}
	c.visiting[t]++
	defer func() {
		c.visiting[t]--
	}()

	s := &Schema{
		Type:       TypeObject,
		Properties: orderedmap.New[string, *Schema](),
	}
	var truncated bool
	if err := c.addFields(s, t, &truncated, map[reflect.Type]bool{t: true}); err != nil {
		return nil, truncated, err
	}
	if !truncated {
		c.done[t] = s
	}
	return s, truncated, nil
}

// addFields flattens embedded structs like encoding/json. embedded holds the
// struct types already flattened on the current path; a repeat is skipped.
func (c *schemaCompiler) addFields(s *Schema, t reflect.Type, truncated *bool, embedded map[reflect.Type]bool) error {
	for idx := 0; idx < t.NumField(); idx++ {
		f := t.Field(idx)
		tag, err := parseMemberTag(f.Tag.Get("gemini"))
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t, f.Name, err)
		}
		jsonName, jsonIgnored := jsonTagName(f)
		if tag.ignore || jsonIgnored {
			continue
		}
		if f.Anonymous && tag.name == "" && jsonName == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				if embedded[ft] {
					continue
				}
				embedded[ft] = true
				err := c.addFields(s, ft, truncated, embedded)
				delete(embedded, ft)
				if err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if ignorer, ok := typeAs[PropertyIgnorer](f.Type); ok && ignorer.IgnoreProperty() {
			continue
		}
		if desc := f.Tag.Get("description"); desc != "" {
			tag.description = desc
		}

		node, trunc, err := c.compile(f.Type, tag)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t, f.Name, err)
		}
		if trunc {
			*truncated = true
		}
		if node == nil {
			continue
		}

		name := propertyName(f, tag.name, jsonName)
		if _, exists := s.Properties.Get(name); exists {
			return fmt.Errorf("%s.%s: duplicate property %q", t, f.Name, name)
		}
		s.Properties.Set(name, node)
		s.PropertyOrdering = append(s.PropertyOrdering, name)
		if !node.Nullable {
			s.Required = append(s.Required, name)
		}
		key := f.Name
		if jsonName != "" {
			key = jsonName
		}
		s.fields = append(s.fields, schemaField{name: name, key: key})
	}
	return nil
}

func propertyName(f reflect.StructField, tagName string, jsonName string) string {
	if tagName != "" {
		return tagName
	}
	if jsonName != "" {
		return jsonName
	}
	if namer, ok := typeAs[PropertyNamer](f.Type); ok {
		if name := namer.PropertyName(); name != "" {
			return name
		}
	}
	return LowerCamel(f.Name)
}

func jsonTagName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

// typeAs reports whether a pointer to the zero value of t implements I.
func typeAs[I any](t reflect.Type) (I, bool) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	i, ok := reflect.New(t).Interface().(I)
	return i, ok
}

type memberTag struct {
	name        string
	ignore      bool
	format      Format
	null        Nullability
	enum        []string
	description string
}

// parseMemberTag reads `gemini:"name,format=email,nullable,enum=a|b"`.
// A bare "-" excludes the member.
func parseMemberTag(tag string) (memberTag, error) {
	var ret memberTag
	if tag == "" {
		return ret, nil
	}
	if tag == "-" {
		ret.ignore = true
		return ret, nil
	}
	opts := strings.Split(tag, ",")
	ret.name = strings.TrimSpace(opts[0])
	for _, opt := range opts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "":
		case "format":
			format := Format(value)
			if !format.Valid() {
				return ret, fmt.Errorf("unknown format %q", value)
			}
			ret.format = format
		case "nullable":
			ret.null = NullForce
		case "nonnull":
			ret.null = NullNever
		case "enum":
			ret.enum = strings.Split(value, "|")
		default:
			return ret, fmt.Errorf("unknown gemini tag option %q", key)
		}
	}
	return ret, nil
}

// LowerCamel lower cases the leading upper case run of s, keeping the last
// capital when it starts the next word: UserID -> userID, URLValue -> urlValue.
func LowerCamel(s string) string {
	if s == "" || !unicode.IsUpper([]rune(s)[0]) {
		return s
	}
	r := []rune(s)
	for i := range r {
		if i == 1 && !unicode.IsUpper(r[i]) {
			break
		}
		if i > 0 && i+1 < len(r) && !unicode.IsUpper(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

func schemaID(t reflect.Type) string {
	if t.Name() == "" {
		return ""
	}
	name := t.PkgPath() + "/" + t.Name()
	return strconv.FormatUint(xxhash.Sum64String(name), 10)
}

// ID identifies the Go type the schema was compiled from.
func (s *Schema) ID() string {
	return s.id
}

// PropertyNames lists object properties in declaration order.
func (s *Schema) PropertyNames() []string {
	return append([]string(nil), s.PropertyOrdering...)
}

func (s *Schema) Property(name string) (*Schema, bool) {
	if s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// JSONSchema renders the node as a JSON Schema document for prompt text.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	if s == nil {
		return nil
	}
	out := &jsonschema.Schema{
		ID:          jsonschema.ID(s.id),
		Type:        strings.ToLower(string(s.Type)),
		Format:      string(s.Format),
		Description: s.Description,
		Required:    s.Required,
	}
	if s.Nullable {
		out.Extras = map[string]any{"nullable": true}
	}
	for _, v := range s.Enum {
		out.Enum = append(out.Enum, v)
	}
	if s.Properties != nil {
		out.Properties = orderedmap.New[string, *jsonschema.Schema]()
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, pair.Value.JSONSchema())
		}
	}
	if s.Items != nil {
		out.Items = s.Items.JSONSchema()
	}
	return out
}

// String returns the indented JSON Schema text of s.
func (s *Schema) String() string {
	bs, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return ""
	}
	return string(bs)
}

// Remap rewrites the wire property names of a decoded JSON value into the
// keys encoding/json expects for the compiled Go type. Properties unknown to
// the schema are dropped; values of the wrong shape are left untouched so the
// decoder reports them.
func (s *Schema) Remap(v any) any {
	if s == nil {
		return v
	}
	switch s.Type {
	case TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(s.fields))
		for _, f := range s.fields {
			val, ok := m[f.name]
			if !ok {
				continue
			}
			child, _ := s.Property(f.name)
			out[f.key] = child.Remap(val)
		}
		return out
	case TypeArray:
		list, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(list))
		for idx, item := range list {
			out[idx] = s.Items.Remap(item)
		}
		return out
	}
	return v
}
