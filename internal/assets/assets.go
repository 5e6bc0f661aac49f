package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadLetter loads an embedded letter definition by name.
func LoadLetter(name string) (string, error) {
	return defaultLoader.LoadLetter(name)
}

// LoadStyle loads an embedded CSS style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an embedded HTML template by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
