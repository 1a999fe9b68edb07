// internal/claim/validator.go
package claim

import (
	"regexp"
	"strings"
	"time"
)

var (
	fullNameRegex        = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	nationalIDRegex      = regexp.MustCompile(`^\d{16}$`)
	insuranceNumberRegex = regexp.MustCompile(`^\d{13}$`)
	phoneNumberRegex     = regexp.MustCompile(`^\d{10,13}$`)
	amountRegex          = regexp.MustCompile(`^\d+$`)
)

const dateLayout = "2006-01-02"

// DefaultTimeZone is where "today" is evaluated for the service date rule.
const DefaultTimeZone = "Asia/Jakarta"

// Validator checks every field of a Submission. It holds no mutable state.
type Validator struct {
	loc *time.Location
	now func() time.Time
}

// NewValidator builds a Validator. A nil loc means UTC, a nil now means time.Now.
func NewValidator(loc *time.Location, now func() time.Time) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{loc: loc, now: now}
}

// Validate runs all field rules and returns the failed ones. It never panics on
// malformed input; bad values become field errors.
func (v *Validator) Validate(s Submission) ValidationResult {
	res := ValidationResult{}

	if strings.TrimSpace(s.FullName) == "" {
		res.add(FieldFullName, CodeMissingRequired, MsgFullNameRequired)
	} else if !fullNameRegex.MatchString(s.FullName) {
		res.add(FieldFullName, CodeInvalidFormat, MsgFullNameLettersOnly)
	}

	checkDigits(res, s.NationalID, FieldNationalID, nationalIDRegex, MsgNationalIDRequired, MsgNationalIDFormat)
	checkDigits(res, s.InsuranceNumber, FieldInsuranceNumber, insuranceNumberRegex, MsgInsuranceNumberRequired, MsgInsuranceNumberFormat)
	checkDigits(res, s.PhoneNumber, FieldPhoneNumber, phoneNumberRegex, MsgPhoneNumberRequired, MsgPhoneNumberFormat)

	v.checkServiceDate(res, s.ServiceDate)

	if strings.TrimSpace(s.Facility) == "" {
		res.add(FieldFacility, CodeMissingRequired, MsgFacilityRequired)
	}
	if strings.TrimSpace(s.ServiceType) == "" {
		res.add(FieldServiceType, CodeMissingRequired, MsgServiceTypeRequired)
	}

	if s.ReferralDocument == nil {
		res.add(FieldReferralDocument, CodeMissingRequired, MsgReferralRequired)
	}

	if s.Amount == "" {
		res.add(FieldAmount, CodeMissingRequired, MsgAmountRequired)
	} else if !amountRegex.MatchString(s.Amount) {
		res.add(FieldAmount, CodeNotNumeric, MsgAmountNotNumeric)
	}

	return res
}

func checkDigits(res ValidationResult, value, field string, rx *regexp.Regexp, missing, bad string) {
	if value == "" {
		res.add(field, CodeMissingRequired, missing)
		return
	}
	if !rx.MatchString(value) {
		res.add(field, CodeInvalidFormat, bad)
	}
}

func (v *Validator) checkServiceDate(res ValidationResult, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	day, ok := v.parseDate(raw)
	if !ok {
		res.add(FieldServiceDate, CodeInvalidFormat, MsgServiceDateFormat)
		return
	}
	if day.After(v.Today()) {
		res.add(FieldServiceDate, CodeFutureDate, MsgServiceDateFuture)
	}
}

// Today returns midnight of the current calendar day in the validator's zone.
func (v *Validator) Today() time.Time {
	return truncateDay(v.now().In(v.loc))
}

// ParseServiceDate resolves a service date to midnight of its calendar day.
// An empty value resolves to today.
func (v *Validator) ParseServiceDate(raw string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return v.Today(), true
	}
	return v.parseDate(raw)
}

func (v *Validator) parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, v.loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return truncateDay(t.In(v.loc)), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
