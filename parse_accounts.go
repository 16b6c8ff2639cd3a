package mijnbib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ActivityFetcher returns the raw activities JSON for one membership id.
// The accounts extractor calls it once per healthy membership; memberships
// flagged with hasError are never fetched.
type ActivityFetcher func(accountID string) ([]byte, error)

// AccountsParser converts the memberships listing into Account records.
// Implementations can be swapped in via Options to track site changes.
type AccountsParser interface {
	Parse(data []byte, baseURL string, fetchActivity ActivityFetcher) ([]Account, error)
}

type membershipRecord struct {
	HasError    *bool  `json:"hasError"`
	ID          string `json:"id"`
	IsBlocked   bool   `json:"isBlocked"`
	IsExpired   bool   `json:"isExpired"`
	LibraryName string `json:"libraryName"`
	Library     string `json:"library"`
	Name        string `json:"name"`
}

type activityRecord struct {
	LoanHistoryURL string          `json:"loanHistoryUrl"`
	NumberOfHolds  json.RawMessage `json:"numberOfHolds"`
	NumberOfLoans  json.RawMessage `json:"numberOfLoans"`
	OpenAmount     string          `json:"openAmount"`
}

// MembershipsParser is the default AccountsParser. It walks the memberships
// JSON (an object keyed by provider name, each value a list of membership
// records) with a token decoder so accounts come out in document order.
type MembershipsParser struct{}

func (p *MembershipsParser) Parse(data []byte, baseURL string, fetchActivity ActivityFetcher) ([]Account, error) {
	accounts := []Account{}
	if len(bytes.TrimSpace(data)) == 0 {
		return accounts, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &IncompatibleSourceError{Msg: "memberships listing is not valid JSON", Body: string(data), Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &IncompatibleSourceError{Msg: "memberships listing is not a JSON object", Body: string(data)}
	}

	for dec.More() {
		// provider name key
		if _, err := dec.Token(); err != nil {
			return nil, &IncompatibleSourceError{Msg: "memberships listing is not valid JSON", Body: string(data), Err: err}
		}
		var members []membershipRecord
		if err := dec.Decode(&members); err != nil {
			return nil, &IncompatibleSourceError{Msg: "unexpected membership list shape", Body: string(data), Err: err}
		}

		for _, m := range members {
			if m.HasError == nil {
				return nil, &IncompatibleSourceError{
					Msg:  fmt.Sprintf("membership record for account %q misses the hasError field", m.ID),
					Body: string(data),
				}
			}

			acc := Account{
				LibraryName:     m.LibraryName,
				User:            m.Name,
				ID:              m.ID,
				LoansURL:        fmt.Sprintf("%s/mijn-bibliotheek/lidmaatschappen/%s/uitleningen", baseURL, m.ID),
				ReservationsURL: fmt.Sprintf("%s/mijn-bibliotheek/lidmaatschappen/%s/reservaties", baseURL, m.ID),
				OpenAmountsURL:  fmt.Sprintf("%s/mijn-bibliotheek/lidmaatschappen/%s/te-betalen", baseURL, m.ID),
			}

			if *m.HasError {
				// the per-account activities endpoint is unreliable for
				// such accounts, so counts stay unknown and the amount zero
				slog.Warn("account reports error, skipping counts and amounts", "account", m.ID)
				accounts = append(accounts, acc)
				continue
			}

			raw, err := fetchActivity(m.ID)
			if err != nil {
				return nil, err
			}
			var act activityRecord
			if err := json.Unmarshal(raw, &act); err != nil {
				return nil, &IncompatibleSourceError{
					Msg:  fmt.Sprintf("invalid activities response for account %s (JSONDecodeError: %v)", m.ID, err),
					Body: string(raw),
					Err:  err,
				}
			}
			acc.LoansCount = countFromJSON(act.NumberOfLoans)
			acc.ReservationsCount = countFromJSON(act.NumberOfHolds)
			if act.OpenAmount != "" {
				amount, err := parseAmount(act.OpenAmount)
				if err != nil {
					slog.Warn("unparsable open amount", "account", m.ID, "value", act.OpenAmount)
				} else {
					acc.OpenAmounts = amount
				}
			}
			accounts = append(accounts, acc)
		}
	}

	slog.Debug("parsed memberships listing", "accounts", len(accounts))
	return accounts, nil
}

// countFromJSON accepts the counter either as a JSON number or as the
// count text the site sometimes renders ("Geen uitleningen", "5 ...").
func countFromJSON(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseCount(s)
	}
	return nil
}
