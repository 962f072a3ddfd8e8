package test

import (
	"crypto/ed25519"
	"fmt"

	"github.com/wollac/iota-crypto-demo/pkg/bip32path"
	"github.com/wollac/iota-crypto-demo/pkg/slip10"
	"golang.org/x/crypto/blake2b"

	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	pathString = "44'/4218'/0'/%d'"
)

// Wallet is a deterministic test identity.
type Wallet struct {
	name  string
	seed  []byte
	index uint64
}

// NewWallet derives a wallet from its name.
func NewWallet(name string, index uint64) *Wallet {
	seed := blake2b.Sum512([]byte(name))
	return &Wallet{
		name:  name,
		seed:  seed[:],
		index: index,
	}
}

func (w *Wallet) Name() string {
	return w.name
}

// KeyPair calculates an ed25519 key pair by using slip10.
func (w *Wallet) KeyPair() (ed25519.PrivateKey, ed25519.PublicKey) {

	path, err := bip32path.ParsePath(fmt.Sprintf(pathString, w.index))
	if err != nil {
		panic(err)
	}

	key, err := slip10.DeriveKeyFromPath(w.seed, slip10.Ed25519(), path)
	if err != nil {
		panic(err)
	}

	pubKey, privKey := slip10.Ed25519Key(key)
	return ed25519.PrivateKey(privKey), ed25519.PublicKey(pubKey)
}

// Address calculates the ed25519 address of the wallet.
func (w *Wallet) Address() iotago.Ed25519Address {
	_, pubKey := w.KeyPair()
	return iotago.Ed25519AddressFromPubKey(pubKey)
}

// Bech32 returns the testnet bech32 representation of the wallet address.
func (w *Wallet) Bech32() string {
	address := w.Address()
	return address.Bech32(iotago.PrefixTestnet)
}
