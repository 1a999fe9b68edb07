// internal/claim/submission.go
package claim

import (
	"sort"
	"strings"
)

// Field names as they appear in job variables and in ValidationResult keys.
const (
	FieldFullName         = "fullName"
	FieldNationalID       = "nationalId"
	FieldInsuranceNumber  = "insuranceNumber"
	FieldPhoneNumber      = "phoneNumber"
	FieldServiceDate      = "serviceDate"
	FieldFacility         = "facility"
	FieldServiceType      = "serviceType"
	FieldReferralDocument = "referralDocument"
	FieldAmount           = "amount"
)

// Error codes attached to a FieldError.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeFutureDate      = "FUTURE_DATE"
	CodeNotNumeric      = "NOT_NUMERIC"
)

// User-facing messages, in the language of the claim form.
const (
	MsgFullNameRequired        = "Nama lengkap harus diisi"
	MsgFullNameLettersOnly     = "Nama hanya boleh berisi huruf"
	MsgNationalIDRequired      = "NIK harus diisi"
	MsgNationalIDFormat        = "NIK harus 16 digit angka"
	MsgInsuranceNumberRequired = "Nomor JKN harus diisi"
	MsgInsuranceNumberFormat   = "Nomor JKN harus 13 digit angka"
	MsgPhoneNumberRequired     = "Nomor HP harus diisi"
	MsgPhoneNumberFormat       = "Nomor HP harus 10-13 digit angka"
	MsgServiceDateFuture       = "Tanggal tidak boleh lebih dari hari ini"
	MsgServiceDateFormat       = "Format tanggal tidak valid"
	MsgFacilityRequired        = "Fasilitas kesehatan harus diisi"
	MsgServiceTypeRequired     = "Jenis layanan harus diisi"
	MsgReferralRequired        = "Surat rujuk harus diupload"
	MsgAmountRequired          = "Jumlah pengajuan harus diisi"
	MsgAmountNotNumeric        = "Jumlah pengajuan harus berupa angka"
)

// DocumentRef points at an uploaded referral letter.
type DocumentRef struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Submission is one JKN reimbursement claim as collected by the claim form.
// Every value is kept as entered; ServiceDate is empty when no date was picked.
type Submission struct {
	FullName         string       `json:"fullName"`
	NationalID       string       `json:"nationalId"`
	InsuranceNumber  string       `json:"insuranceNumber"`
	PhoneNumber      string       `json:"phoneNumber"`
	ServiceDate      string       `json:"serviceDate,omitempty"`
	Facility         string       `json:"facility"`
	ServiceType      string       `json:"serviceType"`
	ReferralDocument *DocumentRef `json:"referralDocument,omitempty"`
	Amount           string       `json:"amount"`
}

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult maps field name to its error. Only failed fields are present.
type ValidationResult map[string]FieldError

// Valid reports whether no field failed.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Fields returns the failed field names in sorted order.
func (r ValidationResult) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Messages flattens the result to field -> message for display.
func (r ValidationResult) Messages() map[string]string {
	out := make(map[string]string, len(r))
	for f, e := range r {
		out[f] = e.Message
	}
	return out
}

func (r ValidationResult) String() string {
	parts := make([]string, 0, len(r))
	for _, f := range r.Fields() {
		parts = append(parts, f+": "+r[f].Code)
	}
	return strings.Join(parts, ", ")
}

func (r ValidationResult) add(field, code, msg string) {
	r[field] = FieldError{Field: field, Code: code, Message: msg}
}
