package database

import (
	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/database"
	"github.com/gohornet/escrow/pkg/node"
)

const (
	// the used database engine (pebble/mapdb)
	CfgDatabaseEngine = "db.engine"
	// the path to the database folder
	CfgDatabasePath = "db.path"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgDatabaseEngine, string(database.EnginePebble), "the used database engine (pebble/mapdb)")
			fs.String(CfgDatabasePath, "escrowdb", "the path to the database folder")
			return fs
		}(),
	},
	Masked: nil,
}
