package toolset

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/jwt"
	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

func signAuthMessage(_ string, args []string) error {

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	hrpFlag := fs.String(FlagToolHRP, string(iotago.PrefixTestnet), "the HRP of the node")
	privateKeyFlag := fs.String(FlagToolPrivateKey, "", "the ed25519 private key of the address")
	timestampFlag := fs.Int64(FlagToolTimestamp, 0, "the unix timestamp of the auth message, the current time is used if 0")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", ToolAuthSign)
		fs.PrintDefaults()
		println(fmt.Sprintf("\nexample: %s --%s %s",
			ToolAuthSign,
			FlagToolPrivateKey,
			"[PRIV_KEY]",
		))
	}

	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	privKey, err := parseEd25519PrivateKey(*privateKeyFlag)
	if err != nil {
		return fmt.Errorf("can't decode '%s': %w", FlagToolPrivateKey, err)
	}

	timestamp := *timestampFlag
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	pubKey := privKey.Public().(ed25519.PublicKey)
	signature := ed25519.Sign(privKey, restapi.AuthMessage(iotago.NetworkPrefix(*hrpFlag), timestamp))

	// the body of a POST auth/token request
	return printJSON(struct {
		PublicKey string `json:"publicKey"`
		Signature string `json:"signature"`
		Timestamp int64  `json:"timestamp"`
	}{
		PublicKey: hex.EncodeToString(pubKey),
		Signature: hex.EncodeToString(signature),
		Timestamp: timestamp,
	})
}

func generateJWTSecret(_ string, args []string) error {

	if len(args) > 0 {
		return fmt.Errorf("too many arguments for '%s'", ToolJWTSecret)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}

	fmt.Println("Your JWT secret: ", hex.EncodeToString(secret))
	return nil
}

func generateJWTApiToken(appName string, args []string) error {

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	hrpFlag := fs.String(FlagToolHRP, string(iotago.PrefixTestnet), "the HRP of the node")
	secretFlag := fs.String(FlagToolSecret, "", "the JWT secret of the node (restAPI.jwtAuth.secret)")
	addressFlag := fs.String(FlagToolAddress, "", "the bech32 address the token is issued for")
	timeoutFlag := fs.Duration(FlagToolTimeout, 24*time.Hour, "how long the token is valid")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", ToolJWTApi)
		fs.PrintDefaults()
		println(fmt.Sprintf("\nexample: %s --%s %s --%s %s",
			ToolJWTApi,
			FlagToolSecret,
			"[SECRET]",
			FlagToolAddress,
			"[ADDRESS]",
		))
	}

	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	hrp := iotago.NetworkPrefix(*hrpFlag)
	address, err := escrow.ParseBech32Address(hrp, *addressFlag)
	if err != nil {
		return fmt.Errorf("can't decode '%s': %w", FlagToolAddress, err)
	}

	jwtAuth, err := jwt.NewAuth(appName, *timeoutFlag, []byte(*secretFlag), nil)
	if err != nil {
		return fmt.Errorf("JWT auth initialization failed: %w", err)
	}

	jwtToken, err := jwtAuth.IssueJWT(address.Bech32(hrp))
	if err != nil {
		return fmt.Errorf("issuing JWT token failed: %w", err)
	}

	fmt.Println("Your API JWT token: ", jwtToken)
	return nil
}
