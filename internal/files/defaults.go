package files

// DefaultIgnorePatterns are applied when ignore.useDefaultPatterns is set.
var DefaultIgnorePatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",
	".bzr",
	".gitattributes",

	// Dependency and build output
	"node_modules",
	"bower_components",
	"vendor/bundle",
	".yarn",
	"dist",
	"build",
	"target",
	"coverage",
	".next",
	".nuxt",
	".cache",
	".parcel-cache",
	".gradle",
	"__pycache__",
	"*.pyc",
	"*.pyo",
	".pytest_cache",
	".mypy_cache",
	".tox",
	"*.egg-info",
	"venv",
	".venv",

	// Lock files
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
	"composer.lock",
	"Gemfile.lock",
	"Cargo.lock",
	"poetry.lock",
	"Pipfile.lock",
	"go.sum",

	// Editors and OS metadata
	".idea",
	".vscode",
	"*.swp",
	"*.swo",
	".DS_Store",
	"Thumbs.db",

	// Logs and secrets
	"*.log",
	"logs",
	".env",
	".env.*",

	// Repopack's own artifacts
	"repopack-output.txt",
	"repopack-output.xml",
	"repopack-output.md",
}
