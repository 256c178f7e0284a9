package domain

import (
	"fmt"
	"strings"
)

// SubjectKind discriminates the two identity variants a credential can be
// bound to.
type SubjectKind string

const (
	SubjectUser   SubjectKind = "user"
	SubjectClient SubjectKind = "client"
)

// Subject is the identity a token is issued to: an end user or an OAuth
// client. The discriminant travels inline in the serialized form
// ("user:<id>" / "client:<id>"), which is also the JWT "sub" claim.
type Subject struct {
	Kind SubjectKind
	ID   string
}

func UserSubject(id string) Subject {
	return Subject{Kind: SubjectUser, ID: id}
}

func ClientSubject(id string) Subject {
	return Subject{Kind: SubjectClient, ID: id}
}

func (s Subject) IsClient() bool {
	return s.Kind == SubjectClient
}

// String renders the wire form used in the "sub" claim.
func (s Subject) String() string {
	return string(s.Kind) + ":" + s.ID
}

// ParseSubject inverts Subject.String.
func ParseSubject(raw string) (Subject, error) {
	kind, id, ok := strings.Cut(raw, ":")
	if !ok || id == "" {
		return Subject{}, fmt.Errorf("malformed subject %q", raw)
	}
	switch SubjectKind(kind) {
	case SubjectUser, SubjectClient:
		return Subject{Kind: SubjectKind(kind), ID: id}, nil
	default:
		return Subject{}, fmt.Errorf("unknown subject kind %q", kind)
	}
}
