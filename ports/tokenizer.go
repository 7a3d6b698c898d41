package ports

import (
	"time"

	"github.com/layer-3/cerberus/core"
)

// Tokenizer mints and validates self-contained bearer credentials.
type Tokenizer interface {
	// Issue produces a signed credential for the subject with the given
	// role, valid for ttl from now.
	Issue(subject string, role core.Role, ttl time.Duration) (string, error)

	// Validate verifies the credential signature and expiry. Returns
	// core.ErrCredentialExpired for expired credentials and
	// core.ErrCredentialInvalid for anything else that fails.
	Validate(credential string) (*core.Identity, error)
}
