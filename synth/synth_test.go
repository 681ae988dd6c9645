package synth_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/ir"
	"github.com/reoring/typesynth/synth"
)

func mustSynth(t *testing.T, src string, opts typesynth.Options) *synth.Result {
	t.Helper()
	res, err := synth.FromJSON([]byte(src), opts)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	return res
}

func synthErr(t *testing.T, src string, opts typesynth.Options) *typesynth.SchemaError {
	t.Helper()
	_, err := synth.FromJSON([]byte(src), opts)
	if err == nil {
		t.Fatalf("expected error for %s", src)
	}
	se, ok := typesynth.AsSchemaError(err)
	if !ok {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	return se
}

func rootObject(t *testing.T, res *synth.Result) *ir.Object {
	t.Helper()
	o, ok := res.Graph.ObjectOf(res.Root())
	if !ok {
		t.Fatalf("root is %s, want object", res.Root().Kind())
	}
	return o
}

func field(t *testing.T, o *ir.Object, name string) ir.Field {
	t.Helper()
	f, ok := o.Field(name)
	if !ok {
		t.Fatalf("field %q missing; have %d fields", name, len(o.Fields))
	}
	return f
}

const treeSchema = `{
  "title": "Tree",
  "type": "object",
  "properties": {
    "value": {"type": "integer"},
    "children": {"type": "array", "items": {"$ref": "#"}}
  },
  "required": ["value"]
}`

func TestSynthesize_Deterministic(t *testing.T) {
	a := mustSynth(t, treeSchema, typesynth.Options{})
	b := mustSynth(t, treeSchema, typesynth.Options{})
	if diff := cmp.Diff(a.Graph, b.Graph); diff != "" {
		t.Fatalf("graphs differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Graph.Order, b.Graph.Order); diff != "" {
		t.Fatalf("order differs: %s", diff)
	}
}

func TestSynthesize_RecursiveRootTerminates(t *testing.T) {
	res := mustSynth(t, treeSchema, typesynth.Options{})
	root := rootObject(t, res)
	if root.Name != "Tree" {
		t.Fatalf("root name = %q", root.Name)
	}
	if f := field(t, root, "value"); !f.Required {
		t.Fatalf("value should be required")
	}
	arr, ok := field(t, root, "children").Type.(*ir.Array)
	if !ok {
		t.Fatalf("children is not an array")
	}
	ref, ok := arr.Items.(*ir.Ref)
	if !ok {
		t.Fatalf("children items = %T, want placeholder", arr.Items)
	}
	if ref.Target != "#" {
		t.Fatalf("placeholder target = %q", ref.Target)
	}
	if res.Graph.Resolve(ref) != res.Root() {
		t.Fatalf("placeholder does not resolve to the root descriptor")
	}
}

func TestSynthesize_RecursiveDefinition(t *testing.T) {
	res := mustSynth(t, `{
	  "$ref": "#/definitions/Node",
	  "definitions": {
	    "Node": {"type": "object", "properties": {"next": {"$ref": "#/definitions/Node"}}}
	  }
	}`, typesynth.Options{})
	node, ok := res.Graph.Lookup("#/definitions/Node")
	if !ok {
		t.Fatalf("definition not registered")
	}
	if res.Root() != node {
		t.Fatalf("root should share the definition descriptor")
	}
	if node.Info().Name != "Node" {
		t.Fatalf("name = %q", node.Info().Name)
	}
	next := field(t, node.(*ir.Object), "next")
	if r, ok := next.Type.(*ir.Ref); !ok || r.Target != "#/definitions/Node" {
		t.Fatalf("next = %#v", next.Type)
	}
}

func TestSynthesize_ReferenceIdentity(t *testing.T) {
	res := mustSynth(t, `{
	  "type": "object",
	  "properties": {
	    "home": {"$ref": "#/definitions/Address"},
	    "work": {"$ref": "#/definitions/Address"}
	  },
	  "definitions": {
	    "Address": {"type": "object", "properties": {"street": {"type": "string"}}}
	  }
	}`, typesynth.Options{})
	root := rootObject(t, res)
	home, work := field(t, root, "home").Type, field(t, root, "work").Type
	if home != work {
		t.Fatalf("references to one definition produced distinct descriptors")
	}
	def, _ := res.Graph.Lookup("#/definitions/Address")
	if def != home {
		t.Fatalf("definition identity not shared")
	}
	if home.Info().Name != "Address" {
		t.Fatalf("name = %q", home.Info().Name)
	}
	if root.Name != "DynamicModel" {
		t.Fatalf("root name = %q", root.Name)
	}
	if len(res.Graph.Named()) != 2 {
		t.Fatalf("named types = %d, want 2", len(res.Graph.Named()))
	}
}

func TestSynthesize_PointerEscaping(t *testing.T) {
	res := mustSynth(t, `{
	  "type": "object",
	  "properties": {
	    "x": {"$ref": "#/definitions/a~1b"},
	    "y": {"$ref": "#/definitions/c~0d"}
	  },
	  "definitions": {"a/b": {"type": "string"}, "c~d": {"type": "integer"}}
	}`, typesynth.Options{})
	root := rootObject(t, res)
	if sc := field(t, root, "x").Type.(*ir.Scalar); sc.Type != ir.String {
		t.Fatalf("x = %s", sc.Type)
	}
	if sc := field(t, root, "y").Type.(*ir.Scalar); sc.Type != ir.Integer {
		t.Fatalf("y = %s", sc.Type)
	}
	if _, ok := res.Graph.Lookup("#/definitions/a~1b"); !ok {
		t.Fatalf("escaped identity not registered")
	}
}

func TestSynthesize_PropertyOrderPreserved(t *testing.T) {
	res := mustSynth(t, `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"string"},"mid":{"type":"number"}}}`, typesynth.Options{})
	root := rootObject(t, res)
	var got []string
	for _, f := range root.Fields {
		got = append(got, f.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, got); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
}

func TestSynthesize_UndefinedArrayItems(t *testing.T) {
	se := synthErr(t, `{"type":"array"}`, typesynth.Options{})
	if !errors.Is(se, typesynth.ErrType) {
		t.Fatalf("want type error, got %v", se)
	}
	res := mustSynth(t, `{"type":"array"}`, typesynth.Options{AllowUndefinedArrayItems: true})
	arr, ok := res.Root().(*ir.Array)
	if !ok {
		t.Fatalf("root = %T", res.Root())
	}
	if sc, ok := arr.Items.(*ir.Scalar); !ok || sc.Type != ir.Any {
		t.Fatalf("items = %#v", arr.Items)
	}
}

func TestSynthesize_TupleItemsRejected(t *testing.T) {
	se := synthErr(t, `{"type":"array","items":[{"type":"string"}]}`, typesynth.Options{})
	if se.Kind != typesynth.KindSchema {
		t.Fatalf("kind = %v", se.Kind)
	}
}

func TestSynthesize_NullableCollapse(t *testing.T) {
	res := mustSynth(t, `{"type":["string","null"]}`, typesynth.Options{})
	sc, ok := res.Root().(*ir.Scalar)
	if !ok || sc.Type != ir.String || !sc.Nullable {
		t.Fatalf("root = %#v", res.Root())
	}

	res = mustSynth(t, `{"type":["string","integer","null"]}`, typesynth.Options{})
	u, ok := res.Root().(*ir.Union)
	if !ok {
		t.Fatalf("root = %T, want union", res.Root())
	}
	if !u.Nullable || len(u.Members) != 2 {
		t.Fatalf("union nullable=%v members=%d", u.Nullable, len(u.Members))
	}
	if id := u.Members[1].Info().ID; id != "#/type/1" {
		t.Fatalf("member identity = %q", id)
	}

	res = mustSynth(t, `{"type":"null"}`, typesynth.Options{})
	if sc := res.Root().(*ir.Scalar); sc.Type != ir.Null || !sc.Nullable {
		t.Fatalf("null = %#v", sc)
	}
}

func TestSynthesize_UntypedSchemas(t *testing.T) {
	for _, src := range []string{`{}`, `true`, `{"description":"anything"}`, `{"type":"anyType"}`} {
		se := synthErr(t, src, typesynth.Options{})
		if !errors.Is(se, typesynth.ErrType) {
			t.Fatalf("%s: want type error, got %v", src, se)
		}
		res := mustSynth(t, src, typesynth.Options{AllowUndefinedType: true})
		if sc, ok := res.Root().(*ir.Scalar); !ok || sc.Type != ir.Any {
			t.Fatalf("%s: root = %#v", src, res.Root())
		}
	}
	se := synthErr(t, `false`, typesynth.Options{AllowUndefinedType: true})
	if se.Kind != typesynth.KindSchema {
		t.Fatalf("false schema kind = %v", se.Kind)
	}
}

func TestSynthesize_UnknownType(t *testing.T) {
	se := synthErr(t, `{"type":"decimal"}`, typesynth.Options{})
	if !errors.Is(se, typesynth.ErrType) || !errors.Is(se, typesynth.ErrSchema) {
		t.Fatalf("want type error matching the schema base, got %v", se)
	}
}

func TestSynthesize_Inference(t *testing.T) {
	cases := []struct {
		src  string
		want ir.ScalarType
	}{
		{`{"const":"x"}`, ir.String},
		{`{"const":3}`, ir.Integer},
		{`{"const":1.5}`, ir.Number},
		{`{"const":true}`, ir.Boolean},
		{`{"enum":["a","b"]}`, ir.String},
		{`{"enum":[1,2.5]}`, ir.Number},
		{`{"enum":["a",1]}`, ir.Any},
	}
	for _, tc := range cases {
		res := mustSynth(t, tc.src, typesynth.Options{})
		sc, ok := res.Root().(*ir.Scalar)
		if !ok || sc.Type != tc.want {
			t.Fatalf("%s: got %#v, want %s", tc.src, res.Root(), tc.want)
		}
	}
	res := mustSynth(t, `{"properties":{"a":{"type":"string"}}}`, typesynth.Options{})
	rootObject(t, res)
	res = mustSynth(t, `{"items":{"type":"string"}}`, typesynth.Options{})
	if _, ok := res.Root().(*ir.Array); !ok {
		t.Fatalf("items-only schema = %T", res.Root())
	}
}

func TestSynthesize_Constraints(t *testing.T) {
	res := mustSynth(t, `{
	  "type": "object",
	  "properties": {
	    "email": {"type": "string", "format": "email", "minLength": 3, "maxLength": 64, "pattern": "^[^@]+@"},
	    "age": {"type": "integer", "minimum": 0, "exclusiveMaximum": 150, "multipleOf": 1},
	    "ratio": {"type": "number", "maximum": 1, "exclusiveMinimum": true, "minimum": 0},
	    "tags": {"type": "array", "items": {"type": "string"}, "minItems": 1, "uniqueItems": true}
	  }
	}`, typesynth.Options{})
	root := rootObject(t, res)
	email := field(t, root, "email").Type.(*ir.Scalar)
	if email.Format != "email" || *email.MinLength != 3 || *email.MaxLength != 64 || len(email.Patterns) != 1 {
		t.Fatalf("email constraints = %#v", email.Constraints)
	}
	age := field(t, root, "age").Type.(*ir.Scalar)
	if age.Minimum.String() != "0" || age.ExclusiveMaximum.String() != "150" || age.MultipleOf.String() != "1" {
		t.Fatalf("age constraints = %#v", age.Constraints)
	}
	ratio := field(t, root, "ratio").Type.(*ir.Scalar)
	if ratio.Minimum != nil || ratio.ExclusiveMinimum == nil || ratio.ExclusiveMinimum.String() != "0" {
		t.Fatalf("draft-4 exclusiveMinimum not applied: %#v", ratio.Constraints)
	}
	tags := field(t, root, "tags").Type.(*ir.Array)
	if *tags.MinItems != 1 || !tags.UniqueItems {
		t.Fatalf("tags = %#v", tags)
	}
}

func TestSynthesize_MalformedKeywords(t *testing.T) {
	for _, src := range []string{
		`{"type":"string","pattern":"("}`,
		`{"type":"string","minLength":-1}`,
		`{"type":"string","minLength":1.5}`,
		`{"type":"number","multipleOf":0}`,
		`{"type":"number","minimum":"1"}`,
		`{"type":"object","properties":[]}`,
		`{"type":"object","required":"a"}`,
		`{"enum":[]}`,
		`{"type":7}`,
		`{"type":[]}`,
		`[1,2]`,
	} {
		se := synthErr(t, src, typesynth.Options{})
		if se.Kind != typesynth.KindSchema {
			t.Fatalf("%s: kind = %v (%v)", src, se.Kind, se)
		}
	}
}

func TestSynthesize_RequiredNotInProperties(t *testing.T) {
	se := synthErr(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["b"]}`, typesynth.Options{})
	if se.Kind != typesynth.KindSchema || !strings.Contains(se.Message, `"b"`) {
		t.Fatalf("got %v", se)
	}
}

func TestSynthesize_ObjectOpenness(t *testing.T) {
	res := mustSynth(t, `{"type":"object"}`, typesynth.Options{})
	if root := rootObject(t, res); root.Additional == nil {
		t.Fatalf("object without properties should be free-form")
	}
	res = mustSynth(t, `{"type":"object","additionalProperties":{"type":"integer"}}`, typesynth.Options{})
	if sc, ok := rootObject(t, res).Additional.(*ir.Scalar); !ok || sc.Type != ir.Integer {
		t.Fatalf("additional = %#v", rootObject(t, res).Additional)
	}
	res = mustSynth(t, `{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":true}`, typesynth.Options{})
	if rootObject(t, res).Additional != nil {
		t.Fatalf("object with properties should stay closed")
	}
	if !res.Diag.HasWarnings() {
		t.Fatalf("expected a warning for additionalProperties: true")
	}
}

func TestSynthesize_WarningsAndExtra(t *testing.T) {
	res := mustSynth(t, `{
	  "type": "integer",
	  "minLength": 2,
	  "x-go-type": "int32",
	  "not": {"const": 3}
	}`, typesynth.Options{})
	sc := res.Root().(*ir.Scalar)
	if sc.MinLength != nil {
		t.Fatalf("minLength should be dropped for integers")
	}
	if sc.Extra["x-go-type"] != "int32" {
		t.Fatalf("extra = %#v", sc.Extra)
	}
	ws := strings.Join(res.Diag.Warnings(), "\n")
	if !strings.Contains(ws, "minLength") || !strings.Contains(ws, "keyword not") {
		t.Fatalf("warnings = %s", ws)
	}
}

func TestSynthesize_MaxDepth(t *testing.T) {
	src := `{"type":"object","properties":{"a":{"type":"object","properties":{"b":{"type":"string"}}}}}`
	se := synthErr(t, src, typesynth.Options{MaxDepth: 2})
	if se.Path != "#/properties/a/properties/b" {
		t.Fatalf("path = %q", se.Path)
	}
	mustSynth(t, src, typesynth.Options{MaxDepth: 3})
}

func TestSynthesize_PopulateByNameOnGraph(t *testing.T) {
	res := mustSynth(t, `{"type":"object","properties":{"_id":{"type":"string"}}}`, typesynth.Options{PopulateByName: true})
	if !res.Graph.PopulateByName {
		t.Fatalf("PopulateByName not carried to the graph")
	}
}

func TestSynthesize_FirstErrorInDeclarationOrder(t *testing.T) {
	se := synthErr(t, `{"type":"object","properties":{
	  "a": {"type":"array"},
	  "b": {"$ref":"#/nowhere"}
	}}`, typesynth.Options{})
	if !errors.Is(se, typesynth.ErrType) || se.Path != "#/properties/a" {
		t.Fatalf("got %v", se)
	}
}

func TestFromYAML(t *testing.T) {
	b, err := os.ReadFile("testdata/pets.yaml")
	if err != nil {
		t.Fatalf("read yaml: %v", err)
	}
	res, err := synth.FromYAML(b, typesynth.Options{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	root := rootObject(t, res)
	if root.Name != "PetStore" {
		t.Fatalf("root name = %q", root.Name)
	}
	pets := field(t, root, "pets").Type.(*ir.Array)
	u, ok := res.Graph.Resolve(pets.Items).(*ir.Union)
	if !ok {
		t.Fatalf("pets items = %T", pets.Items)
	}
	if u.Discriminator != "kind" || u.Mapping["s:cat"] != 0 || u.Mapping["s:dog"] != 1 {
		t.Fatalf("discriminator = %q mapping=%v", u.Discriminator, u.Mapping)
	}
}

func TestFromYAML_DuplicateKey(t *testing.T) {
	_, err := synth.FromYAML([]byte("type: object\ntype: string\n"), typesynth.Options{})
	if !errors.Is(err, typesynth.ErrSchema) {
		t.Fatalf("want schema error, got %v", err)
	}
}

func TestFromValue(t *testing.T) {
	res, err := synth.FromValue(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b": map[string]any{"type": "string"},
			"a": map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []any{"a"},
	}, typesynth.Options{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	root := rootObject(t, res)
	if root.Fields[0].Name != "a" || !root.Fields[0].Required {
		t.Fatalf("fields = %#v", root.Fields)
	}
}
