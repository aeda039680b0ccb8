// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package voting implements the direct voting engine of spec §4.1:
// fixed-length voting period lifecycle management, quadratic-weighted
// vote ingestion, fork arbitration and block vote-set validation,
// built atop the storage layer and merkle primitive.
package voting

import "fmt"

// ErrorCode identifies why a vote, period transition or fork
// resolution was rejected, matching the named error kinds of spec
// §4.1 one for one. Mirrors blockvalidator.ErrorCode's
// RuleError/ErrorCode idiom rather than introducing a second taxonomy
// shape for the same kind of problem.
type ErrorCode string

const (
	// Vote submission.
	InactivePeriod    ErrorCode = "InactivePeriod"
	OutsideWindow     ErrorCode = "OutsideWindow"
	InvalidVoteType   ErrorCode = "InvalidVoteType"
	VoteTooLarge      ErrorCode = "VoteTooLarge"
	DuplicateVote     ErrorCode = "DuplicateVote"
	InvalidSignature  ErrorCode = "InvalidSignature"
	InvalidVoteAmount ErrorCode = "InvalidVoteAmount"
	RecordFailed      ErrorCode = "RecordFailed"

	// Initialization and period lifecycle.
	InitFailed ErrorCode = "InitFailed"

	// validate_votes (spec §4.1).
	NilVotes                ErrorCode = "NilVotes"
	NoActivePeriod           ErrorCode = "NoActivePeriod"
	InsufficientMajority     ErrorCode = "InsufficientMajority"
	InvalidVotesMerkleRoot   ErrorCode = "InvalidVotesMerkleRoot"
	VoteTimestampOutOfRange  ErrorCode = "VoteTimestampOutOfRange"
	VoteSignatureInvalid     ErrorCode = "VoteSignatureInvalid"
	MissingExpectedValidator ErrorCode = "MissingExpectedValidator"
)

// RuleError is the typed rejection every public operation of this
// package returns on failure.
type RuleError struct {
	Code   ErrorCode
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Is reports whether err is a *RuleError carrying code, enabling
// errors.Is(err, voting.Sentinel(voting.DuplicateVote))-style checks.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel returns a zero-detail *RuleError for code, for use with
// errors.Is.
func Sentinel(code ErrorCode) *RuleError {
	return &RuleError{Code: code}
}

func ruleErr(code ErrorCode, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Detail: fmt.Sprintf(format, args...)}
}
