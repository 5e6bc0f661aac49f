package assets

// Built-in asset names.
const (
	DefaultLetterName  = "default"
	DefaultStyleName   = "letter"
	LetterPageTemplate = "letter"
	UploadFormTemplate = "upload"
)

// AssetLoader defines the contract for loading letters, styles and templates.
type AssetLoader interface {
	// LoadLetter loads a letter definition (YAML) by name (without .yaml).
	// Returns ErrLetterNotFound if the letter doesn't exist.
	LoadLetter(name string) (string, error)

	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// assetKind describes where one kind of asset lives.
type assetKind struct {
	dir      string
	ext      string
	notFound error
}

var (
	letterKind   = assetKind{dir: "letters", ext: ".yaml", notFound: ErrLetterNotFound}
	styleKind    = assetKind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = assetKind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)
