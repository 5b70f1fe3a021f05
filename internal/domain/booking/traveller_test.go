package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTravellers_CanonicalForm(t *testing.T) {
	in := []Traveller{
		{Title: "Mr.", Type: "adult", FirstName: "Ram-Kumar", LastName: "O'Brien"},
	}

	out, err := NormalizeTravellers(in)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Mr", out[0].Title)
	assert.Equal(t, PaxAdult, out[0].Type)
	assert.Equal(t, "RAMKUMAR", out[0].FirstName)
	assert.Equal(t, "OBRIEN", out[0].LastName)
	assert.Empty(t, out[0].DateOfBirth, "adults carry no DOB in the supplier payload")
}

func TestNormalizeTravellers_Validation(t *testing.T) {
	testCases := []struct {
		name      string
		traveller Traveller
		wantErr   error
	}{
		{
			name:      "missing type",
			traveller: Traveller{FirstName: "A", LastName: "B"},
			wantErr:   ErrPassengerTypeMissing,
		},
		{
			name:      "invalid type",
			traveller: Traveller{Type: "SENIOR", FirstName: "A", LastName: "B"},
			wantErr:   ErrPassengerTypeInvalid,
		},
		{
			name:      "missing name",
			traveller: Traveller{Type: "ADULT", FirstName: "A"},
			wantErr:   ErrPassengerNameMissing,
		},
		{
			name:      "child without dob",
			traveller: Traveller{Type: "CHILD", FirstName: "A", LastName: "B"},
			wantErr:   ErrDOBRequired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeTravellers([]Traveller{tc.traveller})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNormalizeTravellers_EmptyListRejected(t *testing.T) {
	_, err := NormalizeTravellers(nil)
	assert.ErrorIs(t, err, ErrTravellersMissing)

	_, err = NormalizeTravellers([]Traveller{})
	assert.ErrorIs(t, err, ErrTravellersMissing)
}

func TestNormalizeTravellers_ChildKeepsDOB(t *testing.T) {
	out, err := NormalizeTravellers([]Traveller{
		{Type: "child", FirstName: "A", LastName: "B", DateOfBirth: "2018-06-01"},
	})

	require.NoError(t, err)
	assert.Equal(t, "2018-06-01", out[0].DateOfBirth)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone("9876543210"))
	assert.Equal(t, "+449876543210", NormalizePhone("+449876543210"))
	assert.Equal(t, fallbackPhone, NormalizePhone(""))
}

func TestNormalizeContact_Defaults(t *testing.T) {
	out := NormalizeContact(ContactInfo{})

	assert.Equal(t, []string{fallbackEmail}, out.Emails)
	assert.Equal(t, []string{fallbackPhone}, out.Contacts)
	assert.Equal(t, "Primary Contact", out.ECN)
}

func TestNormalizeDelivery_FallsBackToContact(t *testing.T) {
	contact := NormalizeContact(ContactInfo{Emails: []string{"a@b.c"}, Contacts: []string{"9876543210"}})

	out := NormalizeDelivery(DeliveryInfo{}, contact)
	assert.Equal(t, contact.Emails, out.Emails)
	assert.Equal(t, contact.Contacts, out.Contacts)

	explicit := NormalizeDelivery(DeliveryInfo{Emails: []string{"x@y.z"}, Contacts: []string{"1112223334"}}, contact)
	assert.Equal(t, []string{"x@y.z"}, explicit.Emails)
	assert.Equal(t, []string{"+911112223334"}, explicit.Contacts)
}

func TestSanitizeGST(t *testing.T) {
	assert.Nil(t, SanitizeGST(nil))
	assert.Nil(t, SanitizeGST(&GSTInfo{RegisteredName: "Acme"}))

	out := SanitizeGST(&GSTInfo{GSTNumber: "29ABCDE1234F1Z5", Mobile: "9876543210"})
	require.NotNil(t, out)
	assert.Equal(t, "+919876543210", out.Mobile)
}

func TestSeatTotal(t *testing.T) {
	holds := []SeatHold{{Price: 350}, {Price: 450}}
	assert.Equal(t, int64(800), SeatTotal(holds))
	assert.Zero(t, SeatTotal(nil))
}
