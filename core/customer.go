package core

// KycStatus is the partner's identity-verification status for a customer
type KycStatus string

const (
	KycStatusDraft       KycStatus = "DRAFT"
	KycStatusPending     KycStatus = "PENDING"
	KycStatusInReview    KycStatus = "IN_REVIEW"
	KycStatusActive      KycStatus = "ACTIVE"
	KycStatusNeedActions KycStatus = "NEED_ACTIONS"
	KycStatusRejected    KycStatus = "REJECTED"
	KycStatusSuspended   KycStatus = "SUSPENDED"

	// KycStatusTimedOut is synthesized locally when polling gives up; the
	// partner never reports it
	KycStatusTimedOut KycStatus = "TIMED_OUT"
)

// Terminal reports whether polling should stop without approval
func (s KycStatus) Terminal() bool {
	switch s {
	case KycStatusRejected, KycStatusSuspended, KycStatusNeedActions:
		return true
	}
	return false
}

// TosStatus is the partner's terms-of-service acceptance state
type TosStatus string

const (
	TosStatusAccepted    TosStatus = "ACCEPTED"
	TosStatusNotRequired TosStatus = "NOT_REQUIRED"
	TosStatusPending     TosStatus = "PENDING"
)

// Address is a postal address collected on the contact-info form
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ContactInfo is the contact-info form payload used to create a customer
type ContactInfo struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth string // YYYY-MM-DD
	Nationality string
	CountryCode string
	Address     *Address
}

// BankDetails is the bank-details form payload used to link an account
type BankDetails struct {
	BankName         string
	AccountName      string
	AccountOwnerName string
	AccountNumber    string
	RoutingNumber    string
}
