package booking

import (
	"regexp"
	"strings"

	"farelock/internal/pkg/errs"
)

type PassengerType string

const (
	PaxAdult  PassengerType = "ADULT"
	PaxChild  PassengerType = "CHILD"
	PaxInfant PassengerType = "INFANT"
)

var (
	ErrTravellersMissing    = errs.New("at least one traveller required")
	ErrPassengerTypeMissing = errs.New("passenger type missing")
	ErrPassengerTypeInvalid = errs.New("invalid passenger type")
	ErrPassengerNameMissing = errs.New("passenger name missing")
	ErrDOBRequired          = errs.New("date of birth required for non-adult passenger")
)

type Traveller struct {
	Title         string        `json:"ti"`
	Type          PassengerType `json:"pt"`
	FirstName     string        `json:"fN"`
	LastName      string        `json:"lN"`
	DateOfBirth   string        `json:"dob,omitempty"`
	PassportNo    string        `json:"pNum,omitempty"`
	PassportExp   string        `json:"eD,omitempty"`
	PassportNat   string        `json:"pNat,omitempty"`
	PassportIssue string        `json:"pid,omitempty"`
	DocumentID    string        `json:"di,omitempty"`
}

type ContactInfo struct {
	Emails   []string `json:"emails"`
	Contacts []string `json:"contacts"`
	ECN      string   `json:"ecn"`
}

type DeliveryInfo struct {
	Emails   []string `json:"emails"`
	Contacts []string `json:"contacts"`
}

type GSTInfo struct {
	RegisteredName string `json:"registeredName"`
	GSTNumber      string `json:"gstNumber"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
}

var nonAlpha = regexp.MustCompile(`[^A-Za-z]`)

// NormalizeTravellers validates and canonicalizes traveller input into the
// shape the supplier accepts: names stripped to uppercase letters, titles
// without trailing dots, DOB mandatory for children and infants.
func NormalizeTravellers(travellers []Traveller) ([]Traveller, error) {
	if len(travellers) == 0 {
		return nil, ErrTravellersMissing
	}

	out := make([]Traveller, 0, len(travellers))
	for i, t := range travellers {
		if t.Type == "" {
			return nil, errs.Mark(errs.Newf("passenger %d", i), ErrPassengerTypeMissing)
		}

		pt := PassengerType(strings.ToUpper(string(t.Type)))
		switch pt {
		case PaxAdult, PaxChild, PaxInfant:
		default:
			return nil, errs.Mark(errs.Newf("passenger %d: %q", i, t.Type), ErrPassengerTypeInvalid)
		}

		if t.FirstName == "" || t.LastName == "" {
			return nil, errs.Mark(errs.Newf("passenger %d", i), ErrPassengerNameMissing)
		}
		if pt != PaxAdult && t.DateOfBirth == "" {
			return nil, errs.Mark(errs.Newf("passenger %d (%s)", i, pt), ErrDOBRequired)
		}

		title := strings.TrimSpace(strings.ReplaceAll(t.Title, ".", ""))
		if title == "" {
			title = "Mr"
		}

		dob := t.DateOfBirth
		if pt == PaxAdult {
			dob = ""
		}

		out = append(out, Traveller{
			Title:         title,
			Type:          pt,
			FirstName:     strings.ToUpper(nonAlpha.ReplaceAllString(t.FirstName, "")),
			LastName:      strings.ToUpper(nonAlpha.ReplaceAllString(t.LastName, "")),
			DateOfBirth:   dob,
			PassportNo:    t.PassportNo,
			PassportExp:   t.PassportExp,
			PassportNat:   t.PassportNat,
			PassportIssue: t.PassportIssue,
			DocumentID:    t.DocumentID,
		})
	}
	return out, nil
}

const (
	fallbackEmail = "noreply@farelock.example"
	fallbackPhone = "+919999999999"
)

func NormalizePhone(phone string) string {
	if phone == "" {
		return fallbackPhone
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+91" + phone
}

// NormalizeContact fills defaults so the supplier payload is always complete.
func NormalizeContact(c ContactInfo) ContactInfo {
	out := ContactInfo{Emails: c.Emails, ECN: c.ECN}
	if len(out.Emails) == 0 {
		out.Emails = []string{fallbackEmail}
	}
	for _, phone := range c.Contacts {
		out.Contacts = append(out.Contacts, NormalizePhone(phone))
	}
	if len(out.Contacts) == 0 {
		out.Contacts = []string{fallbackPhone}
	}
	if out.ECN == "" {
		out.ECN = "Primary Contact"
	}
	return out
}

// NormalizeDelivery falls back to the contact channels when delivery has none.
func NormalizeDelivery(d DeliveryInfo, contact ContactInfo) DeliveryInfo {
	out := DeliveryInfo{}
	if len(d.Emails) > 0 {
		out.Emails = d.Emails
	} else {
		out.Emails = contact.Emails
	}
	if len(d.Contacts) > 0 {
		for _, phone := range d.Contacts {
			out.Contacts = append(out.Contacts, NormalizePhone(phone))
		}
	} else {
		out.Contacts = contact.Contacts
	}
	return out
}

// SanitizeGST drops GST info entirely when no registration number is present.
func SanitizeGST(gst *GSTInfo) *GSTInfo {
	if gst == nil || gst.GSTNumber == "" {
		return nil
	}
	return &GSTInfo{
		RegisteredName: gst.RegisteredName,
		GSTNumber:      gst.GSTNumber,
		Email:          gst.Email,
		Mobile:         NormalizePhone(gst.Mobile),
		Address:        gst.Address,
	}
}
