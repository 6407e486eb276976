// Package forms binds submitted HTML forms and query strings to typed form
// values, validates them and maps them onto the contacts and tasks domain
// types.
//
// Forms keep what the user typed as strings so that a rejected submission
// can be shown again unchanged. Conversion to typed values happens in the
// To* and Query methods, which must only be called on a form whose Parse
// function reported no errors.
package forms
