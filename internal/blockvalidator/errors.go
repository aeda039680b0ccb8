// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockvalidator implements the nine-rule block acceptance
// pipeline of spec §4.2: structure, size, timestamp, proof-of-work,
// votes, validator set, previous-block linkage, merkle root and
// transaction checks, run in order against the current chain tip and
// UTXO set.
package blockvalidator

import "fmt"

// ErrorCode identifies the rule a block failed, matching spec §4.2's
// named error kinds one for one.
type ErrorCode string

const (
	InvalidStructure            ErrorCode = "InvalidStructure"
	MissingField                ErrorCode = "MissingField"
	InvalidBlockHash            ErrorCode = "InvalidBlockHash"
	ExcessTransactions          ErrorCode = "ExcessTransactions"
	ExcessSize                  ErrorCode = "ExcessSize"
	InvalidTimestamp            ErrorCode = "InvalidTimestamp"
	InvalidTimestampOrder       ErrorCode = "InvalidTimestampOrder"
	InvalidPrevBlock            ErrorCode = "InvalidPrevBlock"
	InvalidMerkleRoot           ErrorCode = "InvalidMerkleRoot"
	InvalidPow                  ErrorCode = "InvalidPow"
	InvalidVotes                ErrorCode = "InvalidVotes"
	InsufficientValidators      ErrorCode = "InsufficientValidators"
	InsufficientValidatorWeight ErrorCode = "InsufficientValidatorWeight"
	InvalidCoinbase             ErrorCode = "InvalidCoinbase"
	ExcessReward                ErrorCode = "ExcessReward"
	InvalidTxSignature          ErrorCode = "InvalidTxSignature"
	InvalidUtxoRef              ErrorCode = "InvalidUtxoRef"
	AmountMismatch              ErrorCode = "AmountMismatch"
	EmptyBatch                  ErrorCode = "EmptyBatch"
	EmptyTransactions           ErrorCode = "EmptyTransactions"
	ValidationTimeout           ErrorCode = "ValidationTimeout"
)

// RuleError is the typed BlockValidationError of spec §4.2: every
// failure the pipeline produces names the rule it failed plus a
// human-readable detail.
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

// ruleErr is a small constructor used throughout the pipeline to keep
// each rule file terse.
func ruleErr(code ErrorCode, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *RuleError carrying code, so callers can
// write errors.Is(err, blockvalidator.InvalidPow)-style checks against
// a sentinel RuleError{Code: code}.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel returns a zero-detail *RuleError for code, suitable for use
// with errors.Is.
func Sentinel(code ErrorCode) *RuleError {
	return &RuleError{Code: code}
}
