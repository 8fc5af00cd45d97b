// Package acl implements an access service that stores the granted
// identities of a credential as a JSON document under the credential
// identifier.
package acl

import (
	"encoding/json"
	"sort"

	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/core/store"
	"golang.org/x/xerrors"
)

// Service is an access service that reads and writes the permissions in the
// store given at each call.
//
// - implements access.Service
type Service struct{}

// NewService creates a new access service.
func NewService() Service {
	return Service{}
}

// Match implements access.Service. It returns nil if every identity is
// granted for the credential rule, otherwise a meaningful error on the reason
// it does not have access.
func (srvc Service) Match(store store.Readable, creds access.Credential, idents ...access.Identity) error {
	perms, err := loadPermissions(store, creds.GetID())
	if err != nil {
		return xerrors.Errorf("failed to load permissions: %v", err)
	}

	for _, ident := range idents {
		err = perms.match(creds.GetRule(), ident)
		if err != nil {
			return err
		}
	}

	return nil
}

// Grant implements access.Service. It adds the identities to the list granted
// for the credential rule. Granting an identity twice has no effect.
func (srvc Service) Grant(store store.Snapshot, creds access.Credential, idents ...access.Identity) error {
	perms, err := loadPermissions(store, creds.GetID())
	if err != nil {
		return xerrors.Errorf("failed to load permissions: %v", err)
	}

	err = perms.evolve(creds.GetRule(), idents...)
	if err != nil {
		return xerrors.Errorf("failed to evolve permissions: %v", err)
	}

	value, err := json.Marshal(perms)
	if err != nil {
		return xerrors.Errorf("failed to marshal permissions: %v", err)
	}

	err = store.Set(creds.GetID(), value)
	if err != nil {
		return xerrors.Errorf("failed to store permissions: %v", err)
	}

	return nil
}

// permissions maps a rule to the sorted list of identity names granted for
// it.
type permissions map[string][]string

func loadPermissions(store store.Readable, id []byte) (permissions, error) {
	value, err := store.Get(id)
	if err != nil {
		return nil, xerrors.Errorf("failed to get key '%x': %v", id, err)
	}

	perms := permissions{}

	if value == nil {
		return perms, nil
	}

	err = json.Unmarshal(value, &perms)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal permissions: %v", err)
	}

	return perms, nil
}

func (p permissions) match(rule string, ident access.Identity) error {
	name, err := ident.MarshalText()
	if err != nil {
		return xerrors.Errorf("failed to marshal identity: %v", err)
	}

	for _, granted := range p[rule] {
		if granted == string(name) {
			return nil
		}
	}

	return xerrors.Errorf("rule '%s': identity '%s' is not granted", rule, name)
}

func (p permissions) evolve(rule string, idents ...access.Identity) error {
	for _, ident := range idents {
		name, err := ident.MarshalText()
		if err != nil {
			return xerrors.Errorf("failed to marshal identity: %v", err)
		}

		if p.contains(rule, string(name)) {
			continue
		}

		p[rule] = append(p[rule], string(name))
	}

	sort.Strings(p[rule])

	return nil
}

func (p permissions) contains(rule, name string) bool {
	for _, granted := range p[rule] {
		if granted == name {
			return true
		}
	}

	return false
}
