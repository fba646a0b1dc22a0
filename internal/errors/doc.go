// Package errors provides structured, actionable error messages for the
// vstream command line.
//
// Each error has a code (e.g., "E120") registered with a category, a short
// message and a longer explanation. Call sites add detail, a suggestion,
// and the underlying cause:
//
//	err := errors.New("E141").
//	    WithDetail("No vstream.json found in /srv/app").
//	    WithSuggestion("Run 'vstream serve' without --config to use defaults")
//
//	errors.PrintError(err)
//	// ERROR E141: Configuration file not found
//	//
//	//   No vstream.json found in /srv/app
//	//
//	//   Hint: Run 'vstream serve' without --config to use defaults
package errors
