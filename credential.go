package rendersec

// Credential is an unforgeable capability gating sandbox state changes.
//
// Two credentials are equal only if they come from the same [NewCredential]
// call. The zero Credential is never accepted.
//
// A credential is only as private as the host keeps it: anything holding the
// value, including code reaching it through reflection, can present it.
type Credential struct {
	token *credentialToken
}

// credentialToken is non-zero sized so distinct allocations never share an
// address.
type credentialToken struct {
	_ byte
}

// NewCredential mints a credential.
func NewCredential() Credential {
	return Credential{token: &credentialToken{}}
}

func (c Credential) valid() bool {
	return c.token != nil
}
