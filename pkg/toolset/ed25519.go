package toolset

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/wollac/iota-crypto-demo/pkg/bip32path"
	"github.com/wollac/iota-crypto-demo/pkg/bip39"
	"github.com/wollac/iota-crypto-demo/pkg/slip10"

	iotago "github.com/iotaledger/iota.go/v3"
)

type ed25519Info struct {
	BIP39          string `json:"mnemonic,omitempty"`
	BIP32          string `json:"path,omitempty"`
	PrivateKey     string `json:"privateKey,omitempty"`
	PublicKey      string `json:"publicKey"`
	Ed25519Address string `json:"ed25519"`
	Bech32Address  string `json:"bech32"`
}

func newEd25519Info(pubKey ed25519.PublicKey, hrp iotago.NetworkPrefix) *ed25519Info {
	addr := iotago.Ed25519AddressFromPubKey(pubKey)

	return &ed25519Info{
		PublicKey:      hex.EncodeToString(pubKey),
		Ed25519Address: hex.EncodeToString(addr[:]),
		Bech32Address:  addr.Bech32(hrp),
	}
}

func printEd25519Info(info *ed25519Info, outputJSON bool) error {

	if outputJSON {
		return printJSON(info)
	}

	if len(info.BIP39) > 0 {
		fmt.Println("Your seed BIP39 mnemonic: ", info.BIP39)
		fmt.Println()
		fmt.Println("Your BIP32 path:          ", info.BIP32)
	}
	if len(info.PrivateKey) > 0 {
		fmt.Println("Your ed25519 private key: ", info.PrivateKey)
	}
	fmt.Println("Your ed25519 public key:  ", info.PublicKey)
	fmt.Println("Your ed25519 address:     ", info.Ed25519Address)
	fmt.Println("Your bech32 address:      ", info.Bech32Address)

	return nil
}

// deriveEd25519Key derives the key of the BIP32 path from a BIP39 mnemonic.
func deriveEd25519Key(mnemonic bip39.Mnemonic, path bip32path.Path) (ed25519.PrivateKey, ed25519.PublicKey, error) {

	seed, err := bip39.MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, nil, err
	}

	key, err := slip10.DeriveKeyFromPath(seed, slip10.Ed25519(), path)
	if err != nil {
		return nil, nil, err
	}

	pubKey, privKey := slip10.Ed25519Key(key)
	return ed25519.PrivateKey(privKey), ed25519.PublicKey(pubKey), nil
}

func newMnemonic() (bip39.Mnemonic, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return nil, err
	}
	return bip39.EntropyToMnemonic(entropy)
}

func generateEd25519Key(_ string, args []string) error {

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	hrpFlag := fs.String(FlagToolHRP, string(iotago.PrefixTestnet), "the HRP which should be used for the Bech32 address")
	bip32Path := fs.String(FlagToolBIP32Path, "m/44'/4218'/0'/0'/0'", "the BIP32 path that should be used to derive keys from seed")
	mnemonicFlag := fs.String(FlagToolMnemonic, "", "the BIP39 mnemonic to derive the key from, a new one is generated if empty")
	outputJSONFlag := fs.Bool(FlagToolOutputJSON, false, FlagToolDescriptionOutputJSON)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", ToolEd25519Key)
		fs.PrintDefaults()
		println(fmt.Sprintf("\nexample: %s --%s %s",
			ToolEd25519Key,
			FlagToolHRP,
			string(iotago.PrefixTestnet)))
	}

	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	if len(*hrpFlag) == 0 {
		return fmt.Errorf("'%s' not specified", FlagToolHRP)
	}

	path, err := bip32path.ParsePath(*bip32Path)
	if err != nil {
		return err
	}

	var mnemonic bip39.Mnemonic
	if len(*mnemonicFlag) > 0 {
		mnemonic = bip39.Mnemonic(strings.Fields(*mnemonicFlag))
	} else {
		if mnemonic, err = newMnemonic(); err != nil {
			return err
		}
	}

	privKey, pubKey, err := deriveEd25519Key(mnemonic, path)
	if err != nil {
		return err
	}

	info := newEd25519Info(pubKey, iotago.NetworkPrefix(*hrpFlag))
	info.BIP39 = mnemonic.String()
	info.BIP32 = path.String()
	info.PrivateKey = hex.EncodeToString(privKey)

	return printEd25519Info(info, *outputJSONFlag)
}

func parseEd25519PublicKey(key string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length: %d", len(b))
	}
	return b, nil
}

func parseEd25519PrivateKey(key string) (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(b))
	}
	return b, nil
}

func generateEd25519Address(_ string, args []string) error {

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	hrpFlag := fs.String(FlagToolHRP, string(iotago.PrefixTestnet), "the HRP which should be used for the Bech32 address")
	publicKeyFlag := fs.String(FlagToolPublicKey, "", "an ed25519 public key")
	outputJSONFlag := fs.Bool(FlagToolOutputJSON, false, FlagToolDescriptionOutputJSON)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", ToolEd25519Addr)
		fs.PrintDefaults()
		println(fmt.Sprintf("\nexample: %s --%s %s --%s %s",
			ToolEd25519Addr,
			FlagToolHRP,
			string(iotago.PrefixTestnet),
			FlagToolPublicKey,
			"[PUB_KEY]",
		))
	}

	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	if len(*hrpFlag) == 0 {
		return fmt.Errorf("'%s' not specified", FlagToolHRP)
	}

	pubKey, err := parseEd25519PublicKey(*publicKeyFlag)
	if err != nil {
		return fmt.Errorf("can't decode '%s': %w", FlagToolPublicKey, err)
	}

	return printEd25519Info(newEd25519Info(pubKey, iotago.NetworkPrefix(*hrpFlag)), *outputJSONFlag)
}
