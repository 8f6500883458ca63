package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringList is an ordered list of opaque identifiers stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*l = StringList{}
			return nil
		}
		return json.Unmarshal(v, l)
	case string:
		if v == "" {
			*l = StringList{}
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contains reports membership without mutating the list.
func (l StringList) Contains(id string) bool {
	for _, elm := range l {
		if elm == id {
			return true
		}
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// MovementReferenceType tags a ledger movement with its originating document.
type MovementReferenceType string

const (
	MovementReferencePurchase         MovementReferenceType = "PU"
	MovementReferencePurchaseEdit     MovementReferenceType = "PE"
	MovementReferencePurchaseReversal MovementReferenceType = "PR"
	MovementReferenceRequestApproval  MovementReferenceType = "RQ"
	MovementReferenceRebuild          MovementReferenceType = "RB"
)

var ErrMissingActor = errors.New("acting user is required in context")
