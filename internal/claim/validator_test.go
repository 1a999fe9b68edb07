// internal/claim/validator_test.go
package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var jakarta = mustLoadLocation("Asia/Jakarta")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// fixedNow is 19 Oct 2026 10:30 WIB.
func fixedNow() time.Time {
	return time.Date(2026, time.October, 19, 10, 30, 0, 0, jakarta)
}

func newTestValidator() *Validator {
	return NewValidator(jakarta, fixedNow)
}

func validSubmission() Submission {
	return Submission{
		FullName:        "Siti Rahmawati",
		NationalID:      "3174012345678901",
		InsuranceNumber: "0001234567890",
		PhoneNumber:     "081234567890",
		ServiceDate:     "2026-10-18",
		Facility:        "RSUD Tarakan",
		ServiceType:     "Rawat Jalan",
		ReferralDocument: &DocumentRef{
			Name: "rujukan.pdf",
			URI:  "file:///cache/rujukan.pdf",
		},
		Amount: "1000000",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestValidator_ValidSubmission(t *testing.T) {
	res := newTestValidator().Validate(validSubmission())

	assert.True(t, res.Valid())
	assert.Empty(t, res)
}

func TestValidator_SingleMissingField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		mutate  func(s *Submission)
		code    string
		message string
	}{
		{"empty full name", FieldFullName, func(s *Submission) { s.FullName = "" }, CodeMissingRequired, MsgFullNameRequired},
		{"blank full name", FieldFullName, func(s *Submission) { s.FullName = "   " }, CodeMissingRequired, MsgFullNameRequired},
		{"empty NIK", FieldNationalID, func(s *Submission) { s.NationalID = "" }, CodeMissingRequired, MsgNationalIDRequired},
		{"empty JKN number", FieldInsuranceNumber, func(s *Submission) { s.InsuranceNumber = "" }, CodeMissingRequired, MsgInsuranceNumberRequired},
		{"empty phone", FieldPhoneNumber, func(s *Submission) { s.PhoneNumber = "" }, CodeMissingRequired, MsgPhoneNumberRequired},
		{"empty facility", FieldFacility, func(s *Submission) { s.Facility = "" }, CodeMissingRequired, MsgFacilityRequired},
		{"blank facility", FieldFacility, func(s *Submission) { s.Facility = " \t" }, CodeMissingRequired, MsgFacilityRequired},
		{"empty service type", FieldServiceType, func(s *Submission) { s.ServiceType = "" }, CodeMissingRequired, MsgServiceTypeRequired},
		{"no referral letter", FieldReferralDocument, func(s *Submission) { s.ReferralDocument = nil }, CodeMissingRequired, MsgReferralRequired},
		{"empty amount", FieldAmount, func(s *Submission) { s.Amount = "" }, CodeMissingRequired, MsgAmountRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)

			res := newTestValidator().Validate(s)

			require.Len(t, res, 1, "only %s should fail, got %s", tt.field, res)
			fe, ok := res[tt.field]
			require.True(t, ok)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.code, fe.Code)
			assert.Equal(t, tt.message, fe.Message)
		})
	}
}

func TestValidator_AllFieldsChecked(t *testing.T) {
	res := newTestValidator().Validate(Submission{})

	assert.Equal(t, []string{
		FieldAmount,
		FieldFacility,
		FieldFullName,
		FieldInsuranceNumber,
		FieldNationalID,
		FieldPhoneNumber,
		FieldReferralDocument,
		FieldServiceType,
	}, res.Fields())
	_, hasDate := res[FieldServiceDate]
	assert.False(t, hasDate, "missing service date defaults to today")
}

func TestValidator_FullNameFormat(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"Budi Santoso", true},
		{"budi", true},
		{" Budi ", true},
		{"Budi2", false},
		{"O'Neil", false},
		{"Budi-Santoso", false},
		{"Múrni", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := validSubmission()
			s.FullName = tt.value
			res := newTestValidator().Validate(s)

			if tt.valid {
				assert.NotContains(t, res, FieldFullName)
			} else {
				require.Contains(t, res, FieldFullName)
				assert.Equal(t, CodeInvalidFormat, res[FieldFullName].Code)
				assert.Equal(t, MsgFullNameLettersOnly, res[FieldFullName].Message)
			}
		})
	}
}

func TestValidator_NationalIDShape(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"exactly 16 digits", "1234567890123456", true},
		{"too short", "123", false},
		{"15 digits", "123456789012345", false},
		{"17 digits", "12345678901234567", false},
		{"letter inside", "12345678901234a6", false},
		{"spaces around", " 1234567890123456", false},
		{"dashes", "1234-5678-9012-3456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			s.NationalID = tt.value
			res := newTestValidator().Validate(s)

			if tt.valid {
				assert.True(t, res.Valid())
				return
			}
			require.Len(t, res, 1)
			assert.Equal(t, CodeInvalidFormat, res[FieldNationalID].Code)
			assert.Equal(t, MsgNationalIDFormat, res[FieldNationalID].Message)
		})
	}
}

func TestValidator_InsuranceAndPhoneShape(t *testing.T) {
	tests := []struct {
		name  string
		field string
		set   func(s *Submission, v string)
		value string
		valid bool
	}{
		{"jkn 13 digits", FieldInsuranceNumber, func(s *Submission, v string) { s.InsuranceNumber = v }, "1234567890123", true},
		{"jkn 12 digits", FieldInsuranceNumber, func(s *Submission, v string) { s.InsuranceNumber = v }, "123456789012", false},
		{"jkn 14 digits", FieldInsuranceNumber, func(s *Submission, v string) { s.InsuranceNumber = v }, "12345678901234", false},
		{"phone 10 digits", FieldPhoneNumber, func(s *Submission, v string) { s.PhoneNumber = v }, "0812345678", true},
		{"phone 13 digits", FieldPhoneNumber, func(s *Submission, v string) { s.PhoneNumber = v }, "0812345678901", true},
		{"phone 9 digits", FieldPhoneNumber, func(s *Submission, v string) { s.PhoneNumber = v }, "081234567", false},
		{"phone 14 digits", FieldPhoneNumber, func(s *Submission, v string) { s.PhoneNumber = v }, "08123456789012", false},
		{"phone with plus", FieldPhoneNumber, func(s *Submission, v string) { s.PhoneNumber = v }, "+6281234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.set(&s, tt.value)
			res := newTestValidator().Validate(s)

			if tt.valid {
				assert.True(t, res.Valid())
			} else {
				require.Len(t, res, 1)
				assert.Equal(t, CodeInvalidFormat, res[tt.field].Code)
			}
		})
	}
}

func TestValidator_AmountShape(t *testing.T) {
	tests := []struct {
		value string
		code  string
	}{
		{"abc", CodeNotNumeric},
		{"1.000.000", CodeNotNumeric},
		{"-5", CodeNotNumeric},
		{"10e6", CodeNotNumeric},
		{" 100", CodeNotNumeric},
		{"", CodeMissingRequired},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := validSubmission()
			s.Amount = tt.value
			res := newTestValidator().Validate(s)

			require.Len(t, res, 1)
			assert.Equal(t, tt.code, res[FieldAmount].Code)
		})
	}
}

func TestValidator_ServiceDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		code  string
	}{
		{"not selected", "", ""},
		{"today", "2026-10-19", ""},
		{"yesterday", "2026-10-18", ""},
		{"tomorrow", "2026-10-20", CodeFutureDate},
		{"far future", "2027-01-01", CodeFutureDate},
		{"today late evening rfc3339", "2026-10-19T23:59:00+07:00", ""},
		{"today in utc that is tomorrow locally", "2026-10-19T18:00:00Z", CodeFutureDate},
		{"garbage", "19/10/2026", CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			s.ServiceDate = tt.value
			res := newTestValidator().Validate(s)

			if tt.code == "" {
				assert.True(t, res.Valid(), "unexpected errors: %s", res)
				return
			}
			require.Len(t, res, 1)
			assert.Equal(t, tt.code, res[FieldServiceDate].Code)
		})
	}
}

func TestValidator_Idempotent(t *testing.T) {
	v := newTestValidator()
	s := validSubmission()
	s.NationalID = "123"
	s.Amount = "abc"

	first := v.Validate(s)
	second := v.Validate(s)

	assert.Equal(t, first, second)
}

func TestValidator_ParseServiceDate(t *testing.T) {
	v := newTestValidator()

	day, ok := v.ParseServiceDate("")
	require.True(t, ok)
	assert.Equal(t, "2026-10-19", day.Format("2006-01-02"))

	day, ok = v.ParseServiceDate("2026-10-01")
	require.True(t, ok)
	assert.Equal(t, "2026-10-01", day.Format("2006-01-02"))

	_, ok = v.ParseServiceDate("kemarin")
	assert.False(t, ok)
}

func TestValidationResult_Helpers(t *testing.T) {
	res := ValidationResult{}
	res.add(FieldAmount, CodeNotNumeric, MsgAmountNotNumeric)
	res.add(FieldFacility, CodeMissingRequired, MsgFacilityRequired)

	assert.False(t, res.Valid())
	assert.Equal(t, []string{FieldAmount, FieldFacility}, res.Fields())
	assert.Equal(t, map[string]string{
		FieldAmount:   MsgAmountNotNumeric,
		FieldFacility: MsgFacilityRequired,
	}, res.Messages())
	assert.Equal(t, "amount: NOT_NUMERIC, facility: MISSING_REQUIRED", res.String())
}
