package composer

import (
	"crypto/subtle"

	"github.com/klever-io/klever-go/crypto/hashing"
	factoryHasher "github.com/klever-io/klever-go/crypto/hashing/factory"
)

const hasherType = "blake2b"

// ArgsAuthManager is the argument DTO for the NewAuthManager function
type ArgsAuthManager struct {
	ManagerKey AuthToken
}

// authManager grants manager access to callers presenting the configured
// capability token. Only the blake2b hash of the key is retained; presented
// capabilities are hashed and compared in constant time.
type authManager struct {
	hasher         hashing.Hasher
	managerKeyHash []byte
}

// NewAuthManager creates a new capability-based authorizer
func NewAuthManager(args ArgsAuthManager) (*authManager, error) {
	if len(args.ManagerKey) == 0 {
		return nil, ErrEmptyManagerKey
	}

	hasher, err := factoryHasher.NewHasher(hasherType)
	if err != nil {
		return nil, err
	}

	return &authManager{
		hasher:         hasher,
		managerKeyHash: hasher.Compute(string(args.ManagerKey)),
	}, nil
}

// Authorize returns nil only for callers holding the manager capability.
// The check has no side effects: a rejected mutation leaves no state behind.
func (manager *authManager) Authorize(capability AuthToken) error {
	if len(capability) == 0 {
		return ErrUnauthorized
	}

	presentedHash := manager.hasher.Compute(string(capability))
	if subtle.ConstantTimeCompare(presentedHash, manager.managerKeyHash) != 1 {
		return ErrUnauthorized
	}

	return nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (manager *authManager) IsInterfaceNil() bool {
	return manager == nil
}
