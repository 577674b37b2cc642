package normalize

import "archrecon/internal/types"

// Kind names a list-item schema.
type Kind string

const (
	KindModule      Kind = "module"
	KindEndpoint    Kind = "endpoint"
	KindEntity      Kind = "entity"
	KindDecision    Kind = "decision"
	KindPhase       Kind = "phase"
	KindIntegration Kind = "integration"
)

// KindFor maps a merge section to the schema of its items.
func KindFor(section types.Section) (Kind, bool) {
	switch section {
	case types.SectionModules:
		return KindModule, true
	case types.SectionEndpoints:
		return KindEndpoint, true
	case types.SectionDatabase:
		return KindEntity, true
	}
	return "", false
}

type valueKind int

const (
	vString valueKind = iota
	vBool
	vInt
	vStrings
	vList
	vObject
	vAny
)

// field declares one canonical field: where to find it, how to coerce it and
// what it defaults to on create.
type field struct {
	Name    string
	Aliases []string
	Kind    valueKind
	Nested  *schema
	Default any
	Enum    []string
	// Synonyms maps normalized raw values onto Enum members.
	Synonyms map[string]string
	Upper    bool
	// KeyedBy and KeyedValue let a list field arrive as an object keyed by one
	// of the item's fields, e.g. responses {"200": "ok"}.
	KeyedBy    string
	KeyedValue string
}

type schema struct {
	Kind Kind
	// Identity are the canonical fields that identify an item, in priority order.
	Identity []string
	// Scalar receives bare string elements of a list.
	Scalar string
	// ParseScalar overrides Scalar for richer string forms.
	ParseScalar func(string) types.Item
	Fields      []field
}

func (s *schema) canonical(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

var moduleSchema = &schema{
	Kind:     KindModule,
	Identity: []string{"name"},
	Scalar:   "name",
	Fields: []field{
		{Name: "id", Aliases: []string{"module_id", "moduleId"}, Kind: vString},
		{Name: "name", Aliases: []string{"module_name", "moduleName", "title"}, Kind: vString},
		{Name: "description", Aliases: []string{"desc", "summary", "purpose"}, Kind: vString},
		{
			Name: "type", Aliases: []string{"module_type", "moduleType", "category", "layer"}, Kind: vString,
			Default: "backend", Enum: types.ModuleTypes,
			Synonyms: map[string]string{
				"service": "backend", "server": "backend", "api": "backend",
				"ui": "frontend", "web": "frontend", "client": "frontend",
				"library": "shared", "lib": "shared", "common": "shared", "core": "shared",
				"infra": "infrastructure", "devops": "infrastructure", "platform": "infrastructure",
				"third_party": "external", "thirdparty": "external", "integration": "external",
				"ios": "mobile", "android": "mobile", "app": "mobile",
			},
		},
		{
			Name: "status", Aliases: []string{"state"}, Kind: vString,
			Default: "planned", Enum: types.ModuleStatuses,
			Synonyms: map[string]string{
				"todo": "planned", "pending": "planned", "proposed": "planned", "not_started": "planned",
				"in_progress": "in_development", "wip": "in_development", "developing": "in_development", "active": "in_development",
				"done": "completed", "complete": "completed", "finished": "completed",
				"obsolete": "deprecated", "removed": "deprecated",
				"blocked_by": "blocked", "on_hold": "blocked",
			},
		},
		{Name: "path", Aliases: []string{"directory", "dir", "location", "folder"}, Kind: vString},
		{Name: "dependencies", Aliases: []string{"depends_on", "dependsOn", "deps"}, Kind: vStrings},
		{
			Name: "estimatedComplexity", Aliases: []string{"estimated_complexity", "complexity"}, Kind: vString,
			Default: "medium", Enum: []string{"low", "medium", "high", "very_high"},
			Synonyms: map[string]string{"simple": "low", "easy": "low", "moderate": "medium", "complex": "high", "hard": "high"},
		},
		{Name: "features", Aliases: []string{"capabilities", "responsibilities"}, Kind: vStrings},
	},
}

var paramSchema = &schema{
	Identity: []string{"name"},
	Scalar:   "name",
	Fields: []field{
		{Name: "name", Aliases: []string{"param", "key"}, Kind: vString},
		{Name: "type", Aliases: []string{"data_type", "dataType"}, Kind: vString, Default: "string"},
		{Name: "required", Aliases: []string{"is_required", "isRequired"}, Kind: vBool, Default: false},
		{Name: "description", Aliases: []string{"desc"}, Kind: vString},
	},
}

var responseSchema = &schema{
	Identity: []string{"statusCode"},
	Scalar:   "description",
	Fields: []field{
		{Name: "statusCode", Aliases: []string{"status_code", "status", "code"}, Kind: vInt, Default: 200},
		{Name: "schema", Aliases: []string{"body", "response_body"}, Kind: vAny},
		{Name: "example", Aliases: []string{"sample"}, Kind: vAny},
		{Name: "description", Aliases: []string{"desc"}, Kind: vString},
	},
}

var requestBodySchema = &schema{
	Scalar: "schema",
	Fields: []field{
		{Name: "contentType", Aliases: []string{"content_type", "mime", "media_type"}, Kind: vString, Default: "application/json"},
		{Name: "schema", Aliases: []string{"body", "fields"}, Kind: vAny},
		{Name: "example", Aliases: []string{"sample"}, Kind: vAny},
	},
}

var endpointSchema = &schema{
	Kind:        KindEndpoint,
	Identity:    []string{"path"},
	Scalar:      "path",
	ParseScalar: parseEndpointScalar,
	Fields: []field{
		{Name: "method", Aliases: []string{"http_method", "httpMethod", "verb"}, Kind: vString, Default: "GET", Enum: types.HTTPMethods, Upper: true},
		{Name: "path", Aliases: []string{"endpoint", "route", "url", "uri"}, Kind: vString},
		{Name: "summary", Aliases: []string{"title", "name"}, Kind: vString},
		{Name: "description", Aliases: []string{"desc", "details"}, Kind: vString},
		{Name: "module", Aliases: []string{"module_name", "service"}, Kind: vString},
		{Name: "tags", Aliases: []string{"tag"}, Kind: vStrings},
		{Name: "authRequired", Aliases: []string{"auth_required", "requiresAuth", "requires_auth", "auth", "protected"}, Kind: vBool, Default: false},
		{Name: "rolesAllowed", Aliases: []string{"roles_allowed", "roles", "permissions"}, Kind: vStrings},
		{Name: "pathParams", Aliases: []string{"path_params", "params"}, Kind: vList, Nested: paramSchema, KeyedBy: "name", KeyedValue: "type"},
		{Name: "queryParams", Aliases: []string{"query_params", "query"}, Kind: vList, Nested: paramSchema, KeyedBy: "name", KeyedValue: "type"},
		{Name: "requestBody", Aliases: []string{"request_body", "body", "request"}, Kind: vObject, Nested: requestBodySchema},
		{Name: "responses", Aliases: []string{"response"}, Kind: vList, Nested: responseSchema, KeyedBy: "statusCode", KeyedValue: "description"},
		{
			Name: "status", Kind: vString, Default: "planned", Enum: []string{"planned", "implemented", "deprecated"},
			Synonyms: map[string]string{"done": "implemented", "completed": "implemented", "todo": "planned", "in_progress": "planned"},
		},
	},
}

// entityFieldSchema is self-referential through nested_fields; see init.
var entityFieldSchema = &schema{
	Identity: []string{"name"},
	Scalar:   "name",
}

var entitySchema = &schema{
	Kind:     KindEntity,
	Identity: []string{"entity", "table_name", "collection_name"},
	Scalar:   "entity",
	Fields: []field{
		{Name: "entity", Aliases: []string{"entity_name", "entityName", "name", "model"}, Kind: vString},
		{Name: "table_name", Aliases: []string{"tableName", "table"}, Kind: vString},
		{Name: "collection_name", Aliases: []string{"collectionName", "collection"}, Kind: vString},
		{Name: "description", Aliases: []string{"desc", "purpose"}, Kind: vString},
		{Name: "fields", Aliases: []string{"columns", "attributes", "properties"}, Kind: vList, Nested: entityFieldSchema, KeyedBy: "name", KeyedValue: "type"},
		{Name: "relationships", Aliases: []string{"relations"}, Kind: vAny},
		{Name: "indexes", Aliases: []string{"indices"}, Kind: vAny},
	},
}

var decisionSchema = &schema{
	Kind:     KindDecision,
	Identity: []string{"title"},
	Scalar:   "title",
	Fields: []field{
		{Name: "title", Aliases: []string{"name", "decision_title"}, Kind: vString},
		{Name: "decision", Aliases: []string{"choice", "summary"}, Kind: vString},
		{Name: "context", Aliases: []string{"problem", "background"}, Kind: vString},
		{Name: "rationale", Aliases: []string{"reason", "justification", "why"}, Kind: vString},
		{Name: "alternatives", Aliases: []string{"options", "alternatives_considered"}, Kind: vStrings},
		{Name: "consequences", Aliases: []string{"tradeoffs", "trade_offs", "implications"}, Kind: vStrings},
		{
			Name: "status", Kind: vString, Default: "accepted",
			Enum:     []string{"proposed", "accepted", "superseded", "deprecated", "rejected"},
			Synonyms: map[string]string{"approved": "accepted", "decided": "accepted", "draft": "proposed"},
		},
	},
}

var phaseSchema = &schema{
	Kind:     KindPhase,
	Identity: []string{"phase"},
	Scalar:   "phase",
	Fields: []field{
		{Name: "phase", Aliases: []string{"name", "title", "phase_name"}, Kind: vString},
		{Name: "description", Aliases: []string{"desc", "goals", "objective"}, Kind: vString},
		{Name: "duration", Aliases: []string{"timeline", "timeframe", "estimated_duration"}, Kind: vString},
		{Name: "order", Aliases: []string{"index", "sequence", "phase_number"}, Kind: vInt},
		{Name: "deliverables", Aliases: []string{"tasks", "milestones", "outputs"}, Kind: vStrings},
		{Name: "modules", Aliases: []string{"components"}, Kind: vStrings},
		{
			Name: "status", Kind: vString, Default: "planned",
			Enum:     []string{"planned", "in_progress", "completed"},
			Synonyms: map[string]string{"todo": "planned", "active": "in_progress", "wip": "in_progress", "done": "completed"},
		},
	},
}

var integrationSchema = &schema{
	Kind:     KindIntegration,
	Identity: []string{"name"},
	Scalar:   "name",
	Fields: []field{
		{Name: "name", Aliases: []string{"service", "integration", "title"}, Kind: vString},
		{Name: "type", Aliases: []string{"category", "kind"}, Kind: vString, Default: "api"},
		{Name: "provider", Aliases: []string{"vendor"}, Kind: vString},
		{Name: "purpose", Aliases: []string{"description", "reason"}, Kind: vString},
		{Name: "required", Aliases: []string{"is_required"}, Kind: vBool, Default: false},
		{Name: "status", Kind: vString, Default: "planned"},
	},
}

func init() {
	entityFieldSchema.Fields = []field{
		{Name: "name", Aliases: []string{"field_name", "fieldName", "column", "column_name"}, Kind: vString},
		{Name: "type", Aliases: []string{"data_type", "dataType"}, Kind: vString, Default: "string"},
		{Name: "required", Aliases: []string{"is_required", "isRequired", "not_null"}, Kind: vBool, Default: false},
		{Name: "unique", Aliases: []string{"is_unique", "isUnique"}, Kind: vBool, Default: false},
		{Name: "primary_key", Aliases: []string{"primaryKey", "pk", "is_primary"}, Kind: vBool, Default: false},
		{Name: "indexed", Aliases: []string{"index", "is_indexed"}, Kind: vBool, Default: false},
		{Name: "default_value", Aliases: []string{"default", "defaultValue"}, Kind: vAny},
		{Name: "references", Aliases: []string{"ref", "foreign_key", "foreignKey"}, Kind: vString},
		{Name: "description", Aliases: []string{"desc"}, Kind: vString},
		{Name: "nested_fields", Aliases: []string{"nestedFields", "children", "subfields"}, Kind: vList, Nested: entityFieldSchema, KeyedBy: "name", KeyedValue: "type"},
	}
}

var schemas = map[Kind]*schema{
	KindModule:      moduleSchema,
	KindEndpoint:    endpointSchema,
	KindEntity:      entitySchema,
	KindDecision:    decisionSchema,
	KindPhase:       phaseSchema,
	KindIntegration: integrationSchema,
}

// Identity returns the canonical identity fields of kind.
func Identity(kind Kind) []string {
	s, ok := schemas[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(s.Identity))
	copy(out, s.Identity)
	return out
}
