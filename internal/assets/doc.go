// Package assets provides the letter template, page styles and HTML templates.
// Assets can be loaded from embedded files or a custom filesystem path.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (defaults)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── letters/
//	│   └── {name}.yaml          # letter text: date, body (Markdown), closing
//	├── styles/
//	│   └── {name}.css           # print CSS for the Chrome engine
//	└── templates/
//	    └── {name}.html          # letter page and upload form
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
