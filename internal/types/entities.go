package types

// Typed views of the canonical list items. The stored representation is Item;
// these structs document the schema and are what jsonutil.Decode produces.

// Module is a deployable or logical unit of the architecture.
type Module struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Type                string   `json:"type"`
	Status              string   `json:"status"`
	Path                string   `json:"path,omitempty"`
	Dependencies        []string `json:"dependencies"`
	EstimatedComplexity string   `json:"estimatedComplexity"`
	Features            []string `json:"features"`
}

var (
	ModuleTypes    = []string{"frontend", "backend", "shared", "infrastructure", "mobile", "external"}
	ModuleStatuses = []string{"planned", "in_development", "completed", "deprecated", "blocked"}
	HTTPMethods    = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
)

// Endpoint describes one HTTP route of the API surface.
type Endpoint struct {
	Method       string       `json:"method"`
	Path         string       `json:"path"`
	Summary      string       `json:"summary"`
	Description  string       `json:"description"`
	Module       string       `json:"module"`
	Tags         []string     `json:"tags"`
	AuthRequired bool         `json:"authRequired"`
	RolesAllowed []string     `json:"rolesAllowed"`
	PathParams   []Param      `json:"pathParams"`
	QueryParams  []Param      `json:"queryParams"`
	RequestBody  *RequestBody `json:"requestBody,omitempty"`
	Responses    []Response   `json:"responses"`
	Status       string       `json:"status"`
}

type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

type RequestBody struct {
	ContentType string `json:"contentType"`
	Schema      any    `json:"schema"`
	Example     any    `json:"example"`
}

type Response struct {
	StatusCode  int    `json:"statusCode"`
	Schema      any    `json:"schema"`
	Example     any    `json:"example"`
	Description string `json:"description,omitempty"`
}

// Entity is a schema entity from the database section.
type Entity struct {
	Entity         string        `json:"entity"`
	TableName      string        `json:"table_name"`
	CollectionName string        `json:"collection_name,omitempty"`
	Description    string        `json:"description"`
	Fields         []EntityField `json:"fields"`
}

type EntityField struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Required     bool          `json:"required"`
	Unique       bool          `json:"unique"`
	PrimaryKey   bool          `json:"primary_key"`
	Indexed      bool          `json:"indexed"`
	DefaultValue any           `json:"default_value"`
	References   string        `json:"references,omitempty"`
	Description  string        `json:"description"`
	NestedFields []EntityField `json:"nested_fields,omitempty"`
}

// Decision is an architecture decision record.
type Decision struct {
	Title        string   `json:"title"`
	Decision     string   `json:"decision"`
	Context      string   `json:"context"`
	Rationale    string   `json:"rationale"`
	Alternatives []string `json:"alternatives"`
	Consequences []string `json:"consequences"`
	Status       string   `json:"status"`
}

// Phase is one step of the technical roadmap.
type Phase struct {
	Phase        string   `json:"phase"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	Order        int      `json:"order"`
	Deliverables []string `json:"deliverables"`
	Modules      []string `json:"modules"`
	Status       string   `json:"status"`
}

// Integration is an external system the architecture talks to.
type Integration struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Provider string `json:"provider"`
	Purpose  string `json:"purpose"`
	Required bool   `json:"required"`
	Status   string `json:"status"`
}
