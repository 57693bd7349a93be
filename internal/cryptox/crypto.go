// Package cryptox hashes screen lock passcodes for local storage.
//
// The hash only protects the passcode at rest against casual inspection of
// the local database. It is not used to derive encryption keys.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/screenlock/internal/common"
	"github.com/dmitrijs2005/screenlock/internal/models"
)

// SaltSize is the length of the random salt generated per passcode.
const SaltSize = 16

// argon2id parameters. Memory is in KiB.
const (
	hashTime    = 1
	hashMemory  = 19 * 1024
	hashThreads = 1
	hashKeyLen  = 32
)

// HashPasscode derives the stored hash of passcode with the given salt.
func HashPasscode(passcode, salt []byte) []byte {
	return argon2.IDKey(passcode, salt, hashTime, hashMemory, hashThreads, hashKeyLen)
}

// NewCredential hashes passcode with a fresh random salt.
//
// The caller keeps ownership of passcode and should wipe it afterwards.
func NewCredential(passcode []byte) models.Credential {
	salt := common.GenerateRandByteArray(SaltSize)
	return models.Credential{
		Hash: HashPasscode(passcode, salt),
		Salt: salt,
	}
}

// VerifyPasscode reports whether passcode matches the stored credential.
// The comparison runs in constant time. A zero credential never matches, and
// neither does input that is not a full row of digits.
func VerifyPasscode(c models.Credential, passcode []byte) bool {
	if c.IsZero() || !common.IsPasscode(passcode) {
		return false
	}
	candidate := HashPasscode(passcode, c.Salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(c.Hash, candidate) == 1
}
