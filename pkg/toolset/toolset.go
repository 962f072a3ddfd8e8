package toolset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

const (
	FlagToolHRP        = "hrp"
	FlagToolBIP32Path  = "bip32Path"
	FlagToolMnemonic   = "mnemonic"
	FlagToolPublicKey  = "publicKey"
	FlagToolPrivateKey = "privateKey"
	FlagToolTimestamp  = "timestamp"
	FlagToolSecret     = "secret"
	FlagToolAddress    = "address"
	FlagToolTimeout    = "sessionTimeout"
	FlagToolPassword   = "password"
	FlagToolOutputJSON = "json"

	FlagToolDescriptionOutputJSON = "format output as JSON"
)

const (
	ToolEd25519Key  = "ed25519-key"
	ToolEd25519Addr = "ed25519-addr"
	ToolAuthSign    = "auth-sign"
	ToolJWTSecret   = "jwt-secret"
	ToolJWTApi      = "jwt-api"
	ToolPwdHash     = "pwd-hash"
)

type tool struct {
	description string
	handler     func(appName string, args []string) error
}

func tools() map[string]*tool {
	return map[string]*tool{
		ToolEd25519Key:  {"generates an ed25519 key pair from a new mnemonic or the given one", generateEd25519Key},
		ToolEd25519Addr: {"generates an ed25519 address from a public key", generateEd25519Address},
		ToolAuthSign:    {"signs the auth message to request a token from the REST API", signAuthMessage},
		ToolJWTSecret:   {"generates a random secret to sign the REST API tokens", generateJWTSecret},
		ToolJWTApi:      {"generates a JWT token for an address", generateJWTApiToken},
		ToolPwdHash:     {"generates a scrypt password hash and salt for the metrics basic auth", hashPasswordAndSalt},
	}
}

// ShouldHandleTools checks if tools were requested.
func ShouldHandleTools() bool {
	for _, arg := range os.Args[1:] {
		if strings.ToLower(arg) == "tool" || strings.ToLower(arg) == "tools" {
			return true
		}
	}
	return false
}

// HandleTools handles available tools and exits the process.
func HandleTools(appName string) {
	args := os.Args[1:]
	for i, arg := range args {
		if strings.ToLower(arg) == "tool" || strings.ToLower(arg) == "tools" {
			args = args[i:]
			break
		}
	}

	if len(args) == 1 {
		listTools()
		os.Exit(1)
	}

	t, exists := tools()[strings.ToLower(args[1])]
	if !exists {
		fmt.Print("tool not found.\n\n")
		listTools()
		os.Exit(1)
	}

	if err := t.handler(appName, args[2:]); err != nil {
		fmt.Printf("\nerror: %s\n", err)
		os.Exit(1)
	}

	os.Exit(0)
}

func listTools() {
	for _, name := range []string{ToolEd25519Key, ToolEd25519Addr, ToolAuthSign, ToolJWTSecret, ToolJWTApi, ToolPwdHash} {
		fmt.Printf("%-15s %s\n", name+":", tools()[name].description)
	}
}

func parseFlagSet(fs *flag.FlagSet, args []string) error {

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Check if all parameters were parsed
	if fs.NArg() != 0 {
		return fmt.Errorf("too much arguments: %v", fs.Args())
	}

	return nil
}

func printJSON(obj interface{}) error {
	output, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(output))
	return nil
}
