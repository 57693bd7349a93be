package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/screenlock/internal/common"
	"github.com/dmitrijs2005/screenlock/internal/logging"
	"github.com/dmitrijs2005/screenlock/internal/repositories/metadata"
)

// Platform performs the OS side of a WebAuthn ceremony: it shows the
// biometric prompt and talks to the platform authenticator.
type Platform interface {
	// Available reports whether a user-verifying platform authenticator
	// exists on this device.
	Available(ctx context.Context) bool

	// Create runs navigator.credentials.create-equivalent and returns the
	// JSON encoded PublicKeyCredential with its attestation response.
	Create(ctx context.Context, options *protocol.CredentialCreation) ([]byte, error)

	// Get runs navigator.credentials.get-equivalent and returns the JSON
	// encoded PublicKeyCredential with its assertion response.
	Get(ctx context.Context, options *protocol.CredentialAssertion) ([]byte, error)
}

// NoPlatform is a Platform without any authenticator, e.g. a terminal.
type NoPlatform struct{}

func (NoPlatform) Available(context.Context) bool { return false }

func (NoPlatform) Create(context.Context, *protocol.CredentialCreation) ([]byte, error) {
	return nil, common.ErrBiometricUnavailable
}

func (NoPlatform) Get(context.Context, *protocol.CredentialAssertion) ([]byte, error) {
	return nil, common.ErrBiometricUnavailable
}

// WebAuthnConfig identifies the relying party the platform credential is
// bound to.
type WebAuthnConfig struct {
	RPID          string
	RPDisplayName string
	RPOrigin      string
	UserAgent     string
}

// storedCredential is the record kept under KeyBiometricCredential.
type storedCredential struct {
	Purpose    string              `json:"purpose"`
	Credential webauthn.Credential `json:"credential"`
}

// WebAuthn is a Capability backed by a platform authenticator. The
// credential record (public key, sign count) it receives on registration
// is kept in the metadata repository; nothing leaves the device.
type WebAuthn struct {
	wa       *webauthn.WebAuthn
	platform Platform
	repo     metadata.Repository
	label    string
	log      logging.Logger
}

// NewWebAuthn validates cfg and builds the adapter.
func NewWebAuthn(cfg WebAuthnConfig, platform Platform, repo metadata.Repository, log logging.Logger) (*WebAuthn, error) {
	switch {
	case cfg.RPID == "":
		return nil, errors.New("webauthn config: rp id is required")
	case cfg.RPDisplayName == "":
		return nil, errors.New("webauthn config: rp display name is required")
	case cfg.RPOrigin == "":
		return nil, errors.New("webauthn config: rp origin is required")
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     []string{cfg.RPOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}

	return &WebAuthn{
		wa:       wa,
		platform: platform,
		repo:     repo,
		label:    LabelFor(cfg.UserAgent),
		log:      log.With("component", "biometric"),
	}, nil
}

func (w *WebAuthn) IsAvailable(ctx context.Context) bool {
	return w.platform.Available(ctx)
}

func (w *WebAuthn) Label() string {
	return w.label
}

// Register enrolls a platform credential for purpose (e.g. "screen-lock").
// The attestation returned by the platform is verified against the
// registration session before anything is stored.
func (w *WebAuthn) Register(ctx context.Context, purpose string) error {
	if !w.platform.Available(ctx) {
		return common.ErrBiometricUnavailable
	}

	user, err := w.deviceUser(ctx, purpose, nil)
	if err != nil {
		return err
	}

	options, session, err := w.wa.BeginRegistration(user,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementPreferred,
			UserVerification:        protocol.VerificationRequired,
		}),
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
	)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}

	body, err := w.platform.Create(ctx, options)
	if err != nil {
		return fmt.Errorf("platform create: %w", err)
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse attestation: %w", err)
	}

	cred, err := w.wa.CreateCredential(user, *session, parsed)
	if err != nil {
		return fmt.Errorf("verify attestation: %w", err)
	}

	if err := w.store(ctx, storedCredential{Purpose: purpose, Credential: *cred}); err != nil {
		return err
	}

	w.log.Info(ctx, "biometric credential registered", "method", w.label, "purpose", purpose)
	return nil
}

// Authenticate asks the platform to verify the user against the registered
// credential and checks the returned assertion signature with the stored
// public key.
func (w *WebAuthn) Authenticate(ctx context.Context) error {
	if !w.platform.Available(ctx) {
		return common.ErrBiometricUnavailable
	}

	rec, err := w.load(ctx)
	if err != nil {
		return err
	}

	user, err := w.deviceUser(ctx, rec.Purpose, []webauthn.Credential{rec.Credential})
	if err != nil {
		return err
	}

	options, session, err := w.wa.BeginLogin(user, webauthn.WithUserVerification(protocol.VerificationRequired))
	if err != nil {
		return fmt.Errorf("begin login: %w", err)
	}

	body, err := w.platform.Get(ctx, options)
	if err != nil {
		return fmt.Errorf("platform get: %w", err)
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse assertion: %w", err)
	}

	cred, err := w.wa.ValidateLogin(user, *session, parsed)
	if err != nil {
		return fmt.Errorf("verify assertion: %w", err)
	}
	if cred.Authenticator.CloneWarning {
		return errors.New("verify assertion: sign count did not increase")
	}

	rec.Credential = *cred
	return w.store(ctx, rec)
}

// Remove forgets the registered credential.
func (w *WebAuthn) Remove(ctx context.Context) error {
	return w.repo.Delete(ctx, common.KeyBiometricCredential)
}

func (w *WebAuthn) load(ctx context.Context) (storedCredential, error) {
	var rec storedCredential

	raw, err := w.repo.Get(ctx, common.KeyBiometricCredential)
	if err != nil {
		return rec, err
	}
	if len(raw) == 0 {
		return rec, common.ErrBiometricNotRegistered
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("stored credential: %w", err)
	}
	if len(rec.Credential.ID) == 0 || len(rec.Credential.PublicKey) == 0 {
		return rec, common.ErrBiometricNotRegistered
	}
	return rec, nil
}

func (w *WebAuthn) store(ctx context.Context, rec storedCredential) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return w.repo.Set(ctx, common.KeyBiometricCredential, raw)
}

// deviceUser returns the WebAuthn user that represents this device. Its
// handle is a random uuid created on first use.
func (w *WebAuthn) deviceUser(ctx context.Context, name string, creds []webauthn.Credential) (*deviceUser, error) {
	raw, err := w.repo.Get(ctx, common.KeyDeviceUserID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.ParseBytes(raw)
	if err != nil {
		id = uuid.New()
		if err := w.repo.Set(ctx, common.KeyDeviceUserID, []byte(id.String())); err != nil {
			return nil, err
		}
	}

	return &deviceUser{id: id, name: name, creds: creds}, nil
}

// deviceUser implements webauthn.User.
type deviceUser struct {
	id    uuid.UUID
	name  string
	creds []webauthn.Credential
}

func (u *deviceUser) WebAuthnID() []byte {
	b, _ := u.id.MarshalBinary()
	return b
}

func (u *deviceUser) WebAuthnName() string {
	return u.name
}

func (u *deviceUser) WebAuthnDisplayName() string {
	return u.name
}

func (u *deviceUser) WebAuthnCredentials() []webauthn.Credential {
	return u.creds
}
