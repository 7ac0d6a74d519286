// Package evaluation scores finished forecast exports against realized data
// and moves them from the _SUCCESS to the _ARCHIVED state once every day of
// their horizon has been observed.
package evaluation
