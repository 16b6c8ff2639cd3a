package mijnbib

import "time"

// Account is one library membership as shown on the "lidmaatschappen"
// overview. Counts are nil when the site could not report them, which is
// distinct from a confirmed zero.
type Account struct {
	LibraryName       string  `json:"library_name"`
	User              string  `json:"user"`
	ID                string  `json:"id"`
	LoansCount        *int    `json:"loans_count"`
	LoansURL          string  `json:"loans_url"`
	ReservationsCount *int    `json:"reservations_count"`
	ReservationsURL   string  `json:"reservations_url"`
	OpenAmounts       float64 `json:"open_amounts"`
	OpenAmountsURL    string  `json:"open_amounts_url"`
}

// Loan is one currently borrowed item.
//
// Extendable is nil when the page gave no usable extendability signal;
// ExtendURL and ExtendID are empty exactly when Extendable is false or nil.
type Loan struct {
	Title      string     `json:"title"`
	LoanFrom   *time.Time `json:"loan_from"`
	LoanTill   *time.Time `json:"loan_till"`
	Author     string     `json:"author"`
	Type       string     `json:"type"`
	Extendable *bool      `json:"extendable"`
	ExtendURL  string     `json:"extend_url"`
	ExtendID   string     `json:"extend_id"`
	BranchName string     `json:"branchname"`
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	CoverURL   string     `json:"cover_url"`
	AccountID  string     `json:"account_id"`
}

// Reservation is one pending or ready-for-pickup hold. ValidTill is cleared
// by the site once the item becomes available; AvailableTill is only set
// while it is.
type Reservation struct {
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	URL           string     `json:"url"`
	Author        string     `json:"author"`
	Location      string     `json:"location"`
	Available     bool       `json:"available"`
	AvailableTill *time.Time `json:"available_till"`
	RequestOn     *time.Time `json:"request_on"`
	ValidTill     *time.Time `json:"valid_till"`
}

// ExtendDetail is one successfully extended title reported by the site.
type ExtendDetail struct {
	Title string    `json:"title"`
	Until time.Time `json:"until"`
}

// ExtendResult is the best-effort interpretation of the status messages the
// site renders after a loan extension. LikelySuccess is a soft signal, not
// a hard outcome.
type ExtendResult struct {
	LikelySuccess bool           `json:"likely_success"`
	Count         int            `json:"count"`
	Details       []ExtendDetail `json:"details"`
}

// AccountInfo groups everything known about one account, as returned by
// Client.AllInfo.
type AccountInfo struct {
	Account      Account       `json:"account_details"`
	Loans        []Loan        `json:"loans"`
	Reservations []Reservation `json:"reservations"`
}

// ExtendRequest identifies one loan to extend via Client.ExtendLoansByIDs.
type ExtendRequest struct {
	AccountID string
	ExtendID  string
}
