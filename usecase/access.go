package usecase

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

// AccessControl gates the operations that move funds out of custody or into a venue.
type AccessControl struct {
	owner common.Address
}

func NewAccessControl(owner common.Address) *AccessControl {
	return &AccessControl{owner: owner}
}

func (access *AccessControl) Owner() common.Address {
	return access.owner
}

func (access *AccessControl) RequireOwner(caller common.Address) error {
	if caller != access.owner {
		return fmt.Errorf("%w: %v", domain.ErrorUnauthorized, caller.Hex())
	}
	return nil
}
