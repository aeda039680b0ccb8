// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// The key prefixes below are reserved by spec §4.3 but have no
// dedicated operation named in §4.1/§4.2; each gets a direct
// get/put pass-through here rather than a bespoke subsystem, so
// the namespace is exercised without inventing behavior the spec
// never asked for.

// PutNonce records the next expected nonce for address.
func (s *Store) PutNonce(address string, nonce uint64) error {
	return s.rawPut(nonceKey(address), []byte(padUint(nonce)))
}

// GetNonce returns the next expected nonce for address, or
// ErrNotFound.
func (s *Store) GetNonce(address string) (uint64, error) {
	data, err := s.rawGet(nonceKey(address))
	if err != nil {
		return 0, err
	}
	return parseUint(data)
}

// PutSeed stores an opaque seed value for address.
func (s *Store) PutSeed(address string, seed []byte) error {
	return s.rawPut(seedKey(address), seed)
}

// GetSeed returns the seed value stored for address, or ErrNotFound.
func (s *Store) GetSeed(address string) ([]byte, error) {
	return s.rawGet(seedKey(address))
}

// PutSignature stores a detached signature over msg, attributed to
// address.
func (s *Store) PutSignature(address, msg string, signature []byte) error {
	return s.rawPut(signatureKey(address, msg), signature)
}

// GetSignature returns the signature stored for (address, msg), or
// ErrNotFound.
func (s *Store) GetSignature(address, msg string) ([]byte, error) {
	return s.rawGet(signatureKey(address, msg))
}

// PutSnapshot stores an opaque named snapshot blob.
func (s *Store) PutSnapshot(id string, data []byte) error {
	return s.rawPut(snapshotKey(id), data)
}

// GetSnapshot returns the snapshot blob stored under id, or
// ErrNotFound.
func (s *Store) GetSnapshot(id string) ([]byte, error) {
	return s.rawGet(snapshotKey(id))
}

// PutAccessRecord stores an opaque access-control record.
func (s *Store) PutAccessRecord(id string, data []byte) error {
	return s.rawPut(accessKey(id), data)
}

// GetAccessRecord returns the access-control record stored under id,
// or ErrNotFound.
func (s *Store) GetAccessRecord(id string) ([]byte, error) {
	return s.rawGet(accessKey(id))
}

// PutDelegation stores an opaque delegation record for address.
func (s *Store) PutDelegation(address string, data []byte) error {
	return s.rawPut(delegationKey(address), data)
}

// GetDelegation returns the delegation record stored for address, or
// ErrNotFound.
func (s *Store) GetDelegation(address string) ([]byte, error) {
	return s.rawGet(delegationKey(address))
}

// PutDifficulty records the difficulty value associated with a block
// hash.
func (s *Store) PutDifficulty(hash string, difficulty uint32) error {
	return s.rawPut(difficultyKey(hash), []byte(padUint(uint64(difficulty))))
}

// GetDifficulty returns the difficulty value recorded for hash, or
// ErrNotFound.
func (s *Store) GetDifficulty(hash string) (uint32, error) {
	data, err := s.rawGet(difficultyKey(hash))
	if err != nil {
		return 0, err
	}
	v, err := parseUint(data)
	return uint32(v), err
}

func parseUint(data []byte) (uint64, error) {
	var v uint64
	for _, b := range data {
		if b < '0' || b > '9' {
			continue
		}
		v = v*10 + uint64(b-'0')
	}
	return v, nil
}
