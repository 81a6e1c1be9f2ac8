package model

import (
	"strings"
	"unicode/utf8"

	"certledger/domainerrors"
)

// MaxIdentityLength bounds identity arguments. Fabric x509 identities are base64
// encoded subject and issuer DNs and regularly exceed the limits of free-text fields.
const MaxIdentityLength = 4096

// ValidateIdentity checks that id can name a party and be used as a world state key
// attribute: non-empty, valid UTF-8, at most MaxIdentityLength bytes and free of the
// U+0000 and U+10FFFF delimiter runes.
func ValidateIdentity(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	if len(id) > MaxIdentityLength {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s exceeds max length %d", field, MaxIdentityLength)
	}
	if !utf8.ValidString(id) {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s is not valid UTF-8", field)
	}
	if strings.ContainsAny(id, "\u0000\U0010FFFF") {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "%s contains a reserved delimiter character", field)
	}
	return nil
}
