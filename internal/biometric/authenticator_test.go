package biometric

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/require"
)

const (
	flagUP byte = 0x01
	flagUV byte = 0x04
	flagAT byte = 0x40
)

var ctap2, _ = cbor.CTAP2EncOptions().EncMode()

// softAuthenticator is a Platform that holds a P-256 key in memory and
// answers ceremonies the way a platform authenticator with "none"
// attestation does.
type softAuthenticator struct {
	available bool
	rpID      string
	origin    string
	key       *ecdsa.PrivateKey
	credID    []byte
	signCount uint32

	createErr error
	getErr    error
	forged    bool             // return a body that is not a credential at all
	skipUV    bool             // claim presence without user verification
	signer    *ecdsa.PrivateKey // signs assertions instead of key when set
	replay    []byte           // returned by Get instead of a fresh assertion

	creation  *protocol.CredentialCreation
	assertion *protocol.CredentialAssertion
	last      []byte
}

func newSoftAuthenticator(t *testing.T) *softAuthenticator {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	id := make([]byte, 32)
	_, err = rand.Read(id)
	require.NoError(t, err)

	return &softAuthenticator{
		available: true,
		rpID:      "localhost",
		origin:    "https://localhost",
		key:       key,
		credID:    id,
	}
}

func (a *softAuthenticator) Available(context.Context) bool { return a.available }

func (a *softAuthenticator) Create(_ context.Context, o *protocol.CredentialCreation) ([]byte, error) {
	a.creation = o
	if a.createErr != nil {
		return nil, a.createErr
	}
	if a.forged {
		return []byte("forged"), nil
	}

	clientData, err := a.clientData(protocol.CreateCeremony, o.Response.Challenge)
	if err != nil {
		return nil, err
	}

	pub, err := a.key.PublicKey.ECDH()
	if err != nil {
		return nil, err
	}
	point := pub.Bytes()
	coseKey, err := ctap2.Marshal(map[int]any{1: 2, 3: -7, -1: 1, -2: point[1:33], -3: point[33:]})
	if err != nil {
		return nil, err
	}

	authData := a.authData(flagAT)
	authData = append(authData, make([]byte, 16)...)
	authData = binary.BigEndian.AppendUint16(authData, uint16(len(a.credID)))
	authData = append(authData, a.credID...)
	authData = append(authData, coseKey...)

	attestation, err := ctap2.Marshal(map[string]any{
		"fmt":      "none",
		"attStmt":  map[string]any{},
		"authData": authData,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{
		"id":                      b64(a.credID),
		"rawId":                   b64(a.credID),
		"type":                    "public-key",
		"authenticatorAttachment": "platform",
		"response": map[string]any{
			"clientDataJSON":    b64(clientData),
			"attestationObject": b64(attestation),
			"transports":        []string{"internal"},
		},
	})
}

func (a *softAuthenticator) Get(_ context.Context, o *protocol.CredentialAssertion) ([]byte, error) {
	a.assertion = o
	if a.getErr != nil {
		return nil, a.getErr
	}
	if a.forged {
		return []byte("forged"), nil
	}
	if a.replay != nil {
		return a.replay, nil
	}

	clientData, err := a.clientData(protocol.AssertCeremony, o.Response.Challenge)
	if err != nil {
		return nil, err
	}

	a.signCount++
	authData := a.authData(0)
	clientHash := sha256.Sum256(clientData)
	digest := sha256.Sum256(append(append([]byte{}, authData...), clientHash[:]...))

	signer := a.key
	if a.signer != nil {
		signer = a.signer
	}
	sig, err := ecdsa.SignASN1(rand.Reader, signer, digest[:])
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"id":    b64(a.credID),
		"rawId": b64(a.credID),
		"type":  "public-key",
		"response": map[string]any{
			"clientDataJSON":    b64(clientData),
			"authenticatorData": b64(authData),
			"signature":         b64(sig),
		},
	})
	if err != nil {
		return nil, err
	}
	a.last = body
	return body, nil
}

func (a *softAuthenticator) clientData(ceremony protocol.CeremonyType, challenge []byte) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":      ceremony,
		"challenge": b64(challenge),
		"origin":    a.origin,
	})
}

func (a *softAuthenticator) authData(extra byte) []byte {
	flags := flagUP | flagUV | extra
	if a.skipUV {
		flags &^= flagUV
	}
	rpHash := sha256.Sum256([]byte(a.rpID))
	out := append(rpHash[:], flags)
	return binary.BigEndian.AppendUint32(out, a.signCount)
}

func b64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
