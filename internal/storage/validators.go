// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutValidator persists a validator record, keyed by address.
func (s *Store) PutValidator(v *chaintypes.Validator) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.putCached(s.caches.validatorMetrics, validatorKey(string(v.Address)), data, PriorityDefault)
}

// GetValidator returns the validator registered at address, or
// ErrNotFound.
func (s *Store) GetValidator(address string) (*chaintypes.Validator, error) {
	data, err := s.getCached(s.caches.validatorMetrics, validatorKey(address), PriorityDefault)
	if err != nil {
		return nil, err
	}
	var v chaintypes.Validator
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ActiveValidators scans every registered validator and returns those
// currently marked active and not suspended.
func (s *Store) ActiveValidators() ([]*chaintypes.Validator, error) {
	var validators []*chaintypes.Validator
	err := s.rawIterate(prefixValidator, func(key string, value []byte) bool {
		var v chaintypes.Validator
		if jsonErr := json.Unmarshal(value, &v); jsonErr == nil && v.IsActive && !v.IsSuspended {
			validators = append(validators, &v)
		}
		return true
	})
	return validators, err
}

// RecordUptimeSample appends a timestamped uptime sample for address,
// scanned by the composite validator-scoring function over the last
// 24h per spec §4.3.
func (s *Store) RecordUptimeSample(address string, ts time.Time, value float64) error {
	key := validatorUptimeKey(address) + ":" + strconv.FormatInt(ts.UTC().UnixMilli(), 10)
	return s.rawPut(key, []byte(strconv.FormatFloat(value, 'f', -1, 64)))
}

// RecordVoteParticipationSample appends a timestamped vote
// participation sample for address.
func (s *Store) RecordVoteParticipationSample(address string, ts time.Time, value float64) error {
	key := voteParticipationKey(address) + ":" + strconv.FormatInt(ts.UTC().UnixMilli(), 10)
	return s.rawPut(key, []byte(strconv.FormatFloat(value, 'f', -1, 64)))
}

// RecordBlockProductionSample appends a timestamped block-production
// attempt sample for address.
func (s *Store) RecordBlockProductionSample(address string, ts time.Time, success bool) error {
	key := blockProductionKey(address) + ":" + strconv.FormatInt(ts.UTC().UnixMilli(), 10)
	value := "0"
	if success {
		value = "1"
	}
	return s.rawPut(key, []byte(value))
}

// RecordHeartbeat records a validator heartbeat at ts, scanned for
// response-time normalization in the composite score.
func (s *Store) RecordHeartbeat(address string, ts time.Time, responseTimeMillis float64) error {
	key := validatorHeartbeatKey(address, ts.UTC().UnixMilli())
	return s.rawPut(key, []byte(strconv.FormatFloat(responseTimeMillis, 'f', -1, 64)))
}

// RecordSlash appends a slashing entry for address. Per spec §9's open
// questions, no component in this core produces slash entries; this
// is a pure storage pass-through for a future policy to drive.
func (s *Store) RecordSlash(address string, ts time.Time, reason string) error {
	return s.rawPut(slashKey(address, ts.UTC().UnixMilli()), []byte(reason))
}

// averageSince scans every sample under prefix+addr+":" with a
// millisecond timestamp suffix newer than since, returning their mean.
// A window with no samples returns 0.
func (s *Store) averageSince(prefix, addr string, since time.Time) (float64, error) {
	cutoff := since.UTC().UnixMilli()
	var sum float64
	var count int
	err := s.rawIterate(prefix+addr+":", func(key string, value []byte) bool {
		ts := parseTrailingTimestamp(key)
		if ts < cutoff {
			return true
		}
		v, parseErr := strconv.ParseFloat(string(value), 64)
		if parseErr == nil {
			sum += v
			count++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

func parseTrailingTimestamp(key string) int64 {
	idx := -1
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0
	}
	ts, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// ValidatorScore computes the composite expected-block-production
// score of spec §4.3:
//
//	score = 0.4*powContribution + 0.4*tokenVoteShare + 0.2*reliability
//	reliability = 0.4*uptime + 0.4*blockSuccess + 0.2*normalizedResponseTime
//
// powContribution and tokenVoteShare are supplied by the caller (the
// block validator/voting engine own the domain logic for deriving
// hash-power and vote-share fractions); this method owns only the
// storage-side aggregation of uptime, block-production success and
// heartbeat response time.
func (s *Store) ValidatorScore(address string, now time.Time, powContribution, tokenVoteShare float64) (float64, error) {
	uptime, err := s.averageSince(prefixValidatorUptime, address, now.Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	blockSuccess, err := s.averageSince(prefixBlockProduction, address, now.Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	avgResponseMillis, err := s.averageSince(prefixValidatorHeartbeat, address, now.Add(-1*time.Hour))
	if err != nil {
		return 0, err
	}

	// With no heartbeat in the last hour there is no response time to
	// score, so that term contributes 0 rather than the 0ms best case.
	normalizedResponseTime := 0.0
	hbCutoff := now.Add(-1 * time.Hour).UTC().UnixMilli()
	if err := s.rawIterate(prefixValidatorHeartbeat+address+":", func(key string, _ []byte) bool {
		if parseTrailingTimestamp(key) >= hbCutoff {
			normalizedResponseTime = normalizeResponseTime(avgResponseMillis)
			return false
		}
		return true
	}); err != nil {
		return 0, err
	}
	reliability := 0.4*uptime + 0.4*blockSuccess + 0.2*normalizedResponseTime
	score := 0.4*powContribution + 0.4*tokenVoteShare + 0.2*reliability
	return score, nil
}

// normalizeResponseTime maps a response time in milliseconds to a
// [0,1] quality score, with 0ms scoring 1.0 and a 1000ms+ response
// scoring 0.0, linearly in between.
func normalizeResponseTime(millis float64) float64 {
	const worst = 1000.0
	if millis <= 0 {
		return 1.0
	}
	if millis >= worst {
		return 0.0
	}
	return 1.0 - millis/worst
}
