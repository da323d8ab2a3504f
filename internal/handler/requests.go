package handler

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/hopecenter/fatherhood/internal/model"
)

// defaultPhoneRegion is assumed when a submitted phone number carries no
// country prefix. The program serves a single US metro area.
const defaultPhoneRegion = "US"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type setupPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r setupPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.By(passwordStrength)),
	)
}

// passwordStrength enforces the setup-password rule: at least 8 characters
// with one uppercase letter, one lowercase letter, and one digit. Go's RE2
// has no lookaheads, so the rule is a character scan rather than a regex.
func passwordStrength(v interface{}) error {
	s, _ := v.(string)
	var upper, lower, digit bool
	for _, c := range s {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if len(s) < 8 || !upper || !lower || !digit {
		return errors.New("must be at least 8 characters and contain an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}

// signupPayload is the request body for public submission, admin manual
// creation, and full update. The record identity and creation timestamp are
// deliberately absent, so clients cannot overwrite them. Consent fields are
// pointers to distinguish "omitted" from an explicit false.
type signupPayload struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Zip            string `json:"zip"`
	ChildrenCount  int    `json:"childrenCount"`
	ChildrenAges   string `json:"childrenAges"`
	ReferralSource string `json:"referralSource"`
	Interests      string `json:"interests"`
	Availability   string `json:"availability"`
	Notes          string `json:"notes"`
	ConsentContact *bool  `json:"consentToContact"`
	ConsentSMS     *bool  `json:"consentToSms"`
	Status         string `json:"status"`
}

func (r signupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(5, 254), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.By(validPhone)),
		validation.Field(&r.Address, validation.Length(0, 500)),
		validation.Field(&r.Zip, validation.Length(0, 10)),
		validation.Field(&r.ChildrenCount, validation.Min(0), validation.Max(30)),
		validation.Field(&r.ChildrenAges, validation.Length(0, 200)),
		validation.Field(&r.ReferralSource, validation.Length(0, 200)),
		validation.Field(&r.Interests, validation.Length(0, 1000)),
		validation.Field(&r.Availability, validation.Length(0, 500)),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
}

func validPhone(v interface{}) error {
	s, _ := v.(string)
	num, err := phonenumbers.Parse(s, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}
	return nil
}

// toModel builds a signup record from the payload. Consent to contact
// defaults to true unless explicitly false; consent to SMS defaults to false
// unless explicitly true. Status and source are set by the caller.
func (r signupPayload) toModel() *model.Signup {
	consentContact := true
	if r.ConsentContact != nil {
		consentContact = *r.ConsentContact
	}
	consentSMS := false
	if r.ConsentSMS != nil {
		consentSMS = *r.ConsentSMS
	}
	return &model.Signup{
		FullName:       strings.TrimSpace(r.FullName),
		Email:          strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:          strings.TrimSpace(r.Phone),
		Address:        r.Address,
		Zip:            r.Zip,
		ChildrenCount:  r.ChildrenCount,
		ChildrenAges:   r.ChildrenAges,
		ReferralSource: r.ReferralSource,
		Interests:      r.Interests,
		Availability:   r.Availability,
		Notes:          r.Notes,
		ConsentContact: consentContact,
		ConsentSMS:     consentSMS,
	}
}

// statusSetMessage echoes the valid status enum in rejection messages.
func statusSetMessage(got string) string {
	names := make([]string, 0, len(model.Statuses()))
	for _, st := range model.Statuses() {
		names = append(names, string(st))
	}
	return fmt.Sprintf("Invalid status %q. Valid statuses: %s.", got, strings.Join(names, ", "))
}
