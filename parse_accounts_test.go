package mijnbib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const membershipsFixture = `
{
  "Dijk92 - Bibliotheek Gent": [
    {
      "hasError": false,
      "id": "123456",
      "isBlocked": false,
      "isExpired": false,
      "libraryName": "Dijk92 - Bibliotheek Gent",
      "library": "https://gent.bibliotheek.be",
      "name": "John Doe"
    },
    {
      "hasError": true,
      "id": "111222",
      "isBlocked": false,
      "isExpired": false,
      "libraryName": "Brussels",
      "library": "https://bxl.bibliotheek.be",
      "name": "Jane Smith"
    }
  ]
}
`

const activitiesFixture = `
{
  "loanHistoryUrl": "/mijn-bibliotheek/lidmaatschappen/123456/leenhistoriek",
  "numberOfHolds": 2,
  "numberOfLoans": 5,
  "openAmount": "3,20"
}
`

func TestMembershipsParser(t *testing.T) {
	var fetched []string
	fetch := func(accountID string) ([]byte, error) {
		fetched = append(fetched, accountID)
		return []byte(activitiesFixture), nil
	}

	accounts, err := (&MembershipsParser{}).Parse([]byte(membershipsFixture), "https://bibliotheek.be", fetch)
	require.NoError(t, err)

	want := []Account{
		{
			LibraryName:       "Dijk92 - Bibliotheek Gent",
			User:              "John Doe",
			ID:                "123456",
			LoansCount:        ptr(5),
			LoansURL:          "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/123456/uitleningen",
			ReservationsCount: ptr(2),
			ReservationsURL:   "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/123456/reservaties",
			OpenAmounts:       3.20,
			OpenAmountsURL:    "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/123456/te-betalen",
		},
		// second account reports hasError, so counts stay unknown and the
		// amount stays zero
		{
			LibraryName:     "Brussels",
			User:            "Jane Smith",
			ID:              "111222",
			LoansURL:        "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/111222/uitleningen",
			ReservationsURL: "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/111222/reservaties",
			OpenAmountsURL:  "https://bibliotheek.be/mijn-bibliotheek/lidmaatschappen/111222/te-betalen",
		},
	}
	if diff := cmp.Diff(want, accounts); diff != "" {
		t.Fatal(diff)
	}

	// the activities endpoint must never be hit for a hasError account
	require.Equal(t, []string{"123456"}, fetched)
}

func TestMembershipsParserEmptyInput(t *testing.T) {
	accounts, err := (&MembershipsParser{}).Parse(nil, "https://bibliotheek.be", nil)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestMembershipsParserMissingHasError(t *testing.T) {
	data := []byte(`{"Provider": [{"id": "123456", "name": "John Doe"}]}`)

	_, err := (&MembershipsParser{}).Parse(data, "https://bibliotheek.be", nil)
	var incompatible *IncompatibleSourceError
	require.True(t, errors.As(err, &incompatible))
	require.Contains(t, incompatible.Msg, "hasError")
}

func TestMembershipsParserInvalidActivitiesJSON(t *testing.T) {
	fetch := func(accountID string) ([]byte, error) {
		return []byte("{ this is invalid json }"), nil
	}
	data := []byte(`{"Provider": [{"hasError": false, "id": "123456", "name": "John Doe"}]}`)

	_, err := (&MembershipsParser{}).Parse(data, "https://bibliotheek.be", fetch)
	var incompatible *IncompatibleSourceError
	require.True(t, errors.As(err, &incompatible))
	require.Contains(t, incompatible.Msg, "JSONDecodeError")
}

func TestMembershipsParserActivityFetchErrorPassesThrough(t *testing.T) {
	fetchErr := fmt.Errorf("connection reset")
	fetch := func(accountID string) ([]byte, error) {
		return nil, fetchErr
	}
	data := []byte(`{"Provider": [{"hasError": false, "id": "123456", "name": "John Doe"}]}`)

	_, err := (&MembershipsParser{}).Parse(data, "https://bibliotheek.be", fetch)
	require.ErrorIs(t, err, fetchErr)
}

func TestMembershipsParserTextualCounts(t *testing.T) {
	fetch := func(accountID string) ([]byte, error) {
		return []byte(`{"numberOfHolds": "Geen reservaties", "numberOfLoans": "5 uitleningen", "openAmount": "0,00"}`), nil
	}
	data := []byte(`{"Provider": [{"hasError": false, "id": "123456", "name": "John Doe"}]}`)

	accounts, err := (&MembershipsParser{}).Parse(data, "https://bibliotheek.be", fetch)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, ptr(5), accounts[0].LoansCount)
	require.Equal(t, ptr(0), accounts[0].ReservationsCount)
	require.Equal(t, 0.0, accounts[0].OpenAmounts)
}
