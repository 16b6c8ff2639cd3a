package mijnbib

import "fmt"

// AuthenticationError means the site rejected the credentials, or wants the
// privacy statement re-accepted before letting the user in.
type AuthenticationError struct {
	Msg string
	// PrivacyPolicy is true when the rejection is caused by a changed
	// privacy statement that must be re-accepted on the site.
	PrivacyPolicy bool
}

func (e *AuthenticationError) Error() string { return e.Msg }

// CanNotConnectError is a transport-level failure reaching an endpoint.
type CanNotConnectError struct {
	URL string
	Err error
}

func (e *CanNotConnectError) Error() string {
	return fmt.Sprintf("can not connect to %s: %v", e.URL, e.Err)
}

func (e *CanNotConnectError) Unwrap() error { return e.Err }

// TemporarySiteError means the site responded with a server-side failure
// that is understood to be transient (maintenance, backend hiccups).
// Callers may retry later.
type TemporarySiteError struct {
	Msg string
}

func (e *TemporarySiteError) Error() string { return e.Msg }

// IncompatibleSourceError means a response did not match the site contract
// this package was written against. Body carries the raw response for
// diagnosis.
type IncompatibleSourceError struct {
	Msg  string
	Body string
	Err  error
}

func (e *IncompatibleSourceError) Error() string { return e.Msg }

func (e *IncompatibleSourceError) Unwrap() error { return e.Err }

// ItemAccessError means a specific resource, such as an account's loans
// page, could not be opened. NotFound distinguishes a 404 (likely a bad
// account id) from other causes.
type ItemAccessError struct {
	Msg      string
	NotFound bool
	Err      error
}

func (e *ItemAccessError) Error() string { return e.Msg }

func (e *ItemAccessError) Unwrap() error { return e.Err }

// ExtendLoanError means the extension request itself failed server-side.
// When multiple loan ids were submitted, some of them might still have been
// extended; the server gives no way to tell.
type ExtendLoanError struct {
	Msg string
}

func (e *ExtendLoanError) Error() string { return e.Msg }

// InvalidExtendURLError means the extend URL could not be used, either
// because it does not have the expected shape or because the server
// rejected it outright.
type InvalidExtendURLError struct {
	URL string
	Msg string
}

func (e *InvalidExtendURLError) Error() string { return e.Msg }
