package acl

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/internal/testing/fake"
)

func TestService_Grant(t *testing.T) {
	srvc := NewService()
	creds := access.NewContractCreds([]byte{0xaa}, "Example", "all")

	snap := fake.NewSnapshot()

	err := srvc.Grant(snap, creds, access.Principal("alice"))
	require.NoError(t, err)

	err = srvc.Match(snap, creds, access.Principal("alice"))
	require.NoError(t, err)

	err = srvc.Match(snap, creds, access.Principal("bob"))
	require.EqualError(t, err, "rule 'Example:all': identity 'bob' is not granted")

	// Granting twice has no effect.
	err = srvc.Grant(snap, creds, access.Principal("alice"))
	require.NoError(t, err)

	err = srvc.Grant(snap, creds, access.Principal("bob"))
	require.NoError(t, err)

	err = srvc.Match(snap, creds, access.Principal("alice"), access.Principal("bob"))
	require.NoError(t, err)
}

func TestService_RuleScope(t *testing.T) {
	srvc := NewService()

	snap := fake.NewSnapshot()

	err := srvc.Grant(snap, access.NewContractCreds([]byte{0xaa}, "Example", "all"),
		access.Principal("alice"))
	require.NoError(t, err)

	// The same identity is not granted for another rule.
	err = srvc.Match(snap, access.NewContractCreds([]byte{0xaa}, "Other", "all"),
		access.Principal("alice"))
	require.EqualError(t, err, "rule 'Other:all': identity 'alice' is not granted")
}

func TestService_BadStore(t *testing.T) {
	srvc := NewService()
	creds := access.NewContractCreds([]byte{0xaa}, "Example", "all")

	snap := fake.NewBadSnapshot()

	err := srvc.Match(snap, creds, access.Principal("alice"))
	require.EqualError(t, err,
		fake.Err("failed to load permissions: failed to get key 'aa'"))

	err = srvc.Grant(snap, creds, access.Principal("alice"))
	require.EqualError(t, err,
		fake.Err("failed to load permissions: failed to get key 'aa'"))

	snap = fake.NewSnapshot()
	snap.ErrWrite = fake.GetError()

	err = srvc.Grant(snap, creds, access.Principal("alice"))
	require.EqualError(t, err, fake.Err("failed to store permissions"))
}

func TestService_MalformedDocument(t *testing.T) {
	srvc := NewService()
	creds := access.NewContractCreds([]byte{0xaa}, "Example", "all")

	snap := fake.NewSnapshot()
	require.NoError(t, snap.Set(creds.GetID(), []byte("\x00")))

	err := srvc.Match(snap, creds, access.Principal("alice"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal permissions")
}
