// Package domain holds shared domain primitives: typed identifiers that keep
// form, prediction, session, and user ids from being confused at compile time.
package domain

import "github.com/google/uuid"

type FormID uuid.UUID

type PredictionID uuid.UUID

type SessionID uuid.UUID

type UserID uuid.UUID

func NewFormID() FormID             { return FormID(uuid.New()) }
func NewPredictionID() PredictionID { return PredictionID(uuid.New()) }
func NewSessionID() SessionID       { return SessionID(uuid.New()) }
func NewUserID() UserID             { return UserID(uuid.New()) }

func (id FormID) String() string       { return uuid.UUID(id).String() }
func (id PredictionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id UserID) String() string       { return uuid.UUID(id).String() }

func (id FormID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PredictionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// Parse helpers validate at the transport boundary so services can assume
// well-formed ids.

func ParseFormID(s string) (FormID, error) {
	u, err := uuid.Parse(s)
	return FormID(u), err
}

func ParsePredictionID(s string) (PredictionID, error) {
	u, err := uuid.Parse(s)
	return PredictionID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	return SessionID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	return UserID(u), err
}

func (id FormID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id PredictionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }

func (id *FormID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = FormID(u)
	return nil
}

func (id *PredictionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = PredictionID(u)
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}
