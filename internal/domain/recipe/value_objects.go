package recipe

// Ingredient is a single recipe ingredient with a free-form quantity.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Step is one numbered preparation instruction.
type Step struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

// Content groups the editable fields of a recipe. It is what the
// extraction boundary produces and what manual creation submits.
type Content struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PrepTime    int          `json:"prep_time"`
	CookTime    int          `json:"cook_time"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// SourceType identifies how a recipe entered the system.
type SourceType string

const (
	SourceURL      SourceType = "url"
	SourceText     SourceType = "text"
	SourceDocument SourceType = "document"
	SourceImage    SourceType = "image"
	SourceManual   SourceType = "manual"
	SourceCopy     SourceType = "copied"
)

// Source records the capture origin of a recipe.
type Source struct {
	Type SourceType `json:"type"`
	URL  string     `json:"url,omitempty"`
}

// Validate checks that the source type is known and that URL sources
// carry a URL.
func (s Source) Validate() error {
	switch s.Type {
	case SourceURL:
		if s.URL == "" {
			return ErrSourceURLRequired
		}
		return nil
	case SourceText, SourceDocument, SourceImage, SourceManual, SourceCopy:
		return nil
	default:
		return ErrInvalidSource
	}
}

// UpdatePatch carries a partial update. Nil fields are left untouched;
// pointer-to-empty values clear their target.
type UpdatePatch struct {
	Title       *string
	Description *string
	PrepTime    *int
	CookTime    *int
	Servings    *int
	Ingredients *[]Ingredient
	Steps       *[]Step
	Tags        *[]string
	IsPublic    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p UpdatePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.PrepTime == nil &&
		p.CookTime == nil &&
		p.Servings == nil &&
		p.Ingredients == nil &&
		p.Steps == nil &&
		p.Tags == nil &&
		p.IsPublic == nil
}
