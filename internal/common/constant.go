package common

// PasscodeLength is the number of digits in a screen lock passcode.
const PasscodeLength = 4

// Metadata keys of the persisted lock configuration.
const (
	KeyEnabled           = "enabled"
	KeyPaused            = "paused"
	KeyPasscodeHash      = "passcode_hash"
	KeyPasscodeSalt      = "passcode_salt"
	KeyBiometricEnabled  = "biometric_enabled"
	KeyTimeout           = "timeout"
	KeyHideSensitiveData = "hide_sensitive_data"

	// Owned by the biometric adapter, not by the passcode store.
	KeyBiometricCredential = "biometric_credential"
	KeyDeviceUserID        = "device_user_id"
)
