// Package errors provides the classified error type used across sitedeploy.
//
// Every failure that leaves a component carries a category (validation, filesystem,
// render, transfer, ...), a severity, a human message, an optional cause and structured
// context. The build and deploy orchestrators store these values per site instead of
// aborting, and the CLI adapter maps them to exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "failed to create deploy directory").
//		WithContext("site", name).
//		Build()
package errors
