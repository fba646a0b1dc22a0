package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid vstream.json",
		Detail:   "The vstream.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},

	// CLI errors (E140-E159)

	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "The configuration file given with --config does not exist.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Unknown page",
		Detail:   "The requested page is not registered.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},

	// Render and export errors (E160-E179)

	"E160": {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The page could not be rendered to completion.",
	},
	"E170": {
		Category: CategoryExport,
		Message:  "Export failed",
		Detail:   "One or more pages could not be exported.",
	},
	"E171": {
		Category: CategoryExport,
		Message:  "No export target",
		Detail:   "Neither an output directory nor an S3 bucket was configured.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
