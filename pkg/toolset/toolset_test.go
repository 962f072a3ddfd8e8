package toolset

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wollac/iota-crypto-demo/pkg/bip32path"

	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

func TestDeriveEd25519Key(t *testing.T) {
	mnemonic, err := newMnemonic()
	require.NoError(t, err)
	require.Len(t, mnemonic, 24)

	path, err := bip32path.ParsePath("m/44'/4218'/0'/0'/0'")
	require.NoError(t, err)

	privKey, pubKey, err := deriveEd25519Key(mnemonic, path)
	require.NoError(t, err)
	require.Equal(t, pubKey, privKey.Public())

	// the same mnemonic derives the same key
	_, pubKey2, err := deriveEd25519Key(mnemonic, path)
	require.NoError(t, err)
	require.Equal(t, pubKey, pubKey2)

	otherPath, err := bip32path.ParsePath("m/44'/4218'/0'/0'/1'")
	require.NoError(t, err)
	_, pubKey3, err := deriveEd25519Key(mnemonic, otherPath)
	require.NoError(t, err)
	require.NotEqual(t, pubKey, pubKey3)

	message := restapi.AuthMessage(iotago.PrefixTestnet, 1650000000)
	require.True(t, ed25519.Verify(pubKey, message, ed25519.Sign(privKey, message)))
}

func TestEd25519Info(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	parsedPubKey, err := parseEd25519PublicKey("0x" + hex.EncodeToString(pubKey))
	require.NoError(t, err)
	require.Equal(t, pubKey, parsedPubKey)

	parsedPrivKey, err := parseEd25519PrivateKey(hex.EncodeToString(privKey))
	require.NoError(t, err)
	require.Equal(t, privKey, parsedPrivKey)

	_, err = parseEd25519PublicKey(hex.EncodeToString(pubKey[:16]))
	require.Error(t, err)

	_, err = parseEd25519PrivateKey("xyz")
	require.Error(t, err)

	info := newEd25519Info(pubKey, iotago.PrefixTestnet)
	address := iotago.Ed25519AddressFromPubKey(pubKey)
	require.Equal(t, hex.EncodeToString(address[:]), info.Ed25519Address)
	require.Equal(t, address.Bech32(iotago.PrefixTestnet), info.Bech32Address)
}
