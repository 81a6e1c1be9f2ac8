package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every operation reports through.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "certificate 7 does not exist"}
		s.Equal("certificate 7 does not exist", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodePaused}
		s.Equal("paused", err.Error())
	})

	s.Run("appends wrapped cause", func() {
		err := &Error{Code: CodeInternal, Message: "failed to save state", Err: errors.New("disk full")}
		s.Equal("failed to save state: disk full", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err := New(CodeUnauthorized, "caller is not an administrator")
		s.True(errors.Is(err, ErrUnauthorized))
		s.False(errors.Is(err, ErrPaused))
	})

	s.Run("does not match non-domain errors", func() {
		s.False(errors.Is(errors.New("unauthorized"), ErrUnauthorized))
	})

	s.Run("matches through fmt wrapping", func() {
		err := fmt.Errorf("IssueCertificate: %w", New(CodePaused, "registry is paused"))
		s.True(errors.Is(err, ErrPaused))
		s.True(HasCode(err, CodePaused))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("nil error stays nil", func() {
		s.NoError(Wrap(nil, CodeInternal, "ignored"))
	})

	s.Run("preserves existing code", func() {
		inner := New(CodeNotFound, "certificate 3 does not exist")
		err := Wrap(inner, CodeInternal, "RevokeCertificate")
		s.True(HasCode(err, CodeNotFound))
		s.Equal("RevokeCertificate: certificate 3 does not exist", err.Error())
	})

	s.Run("applies code to plain errors", func() {
		err := Wrap(errors.New("ledger unavailable"), CodeInternal, "failed to read registry state")
		s.Equal(CodeInternal, CodeOf(err))
		s.ErrorContains(err, "ledger unavailable")
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeInvalidInput, CodeOf(Newf(CodeInvalidInput, "%s cannot be empty", "student")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
}
