package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --listen
// on both "upvector emulate" and "upvector mcp").
type Flag struct {
	// Name is the long flag name (e.g. "url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "n"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "index.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagURL            = "url"
	FlagToken          = "token"
	FlagNamespace      = "namespace"
	FlagRetries        = "retries"
	FlagTimeout        = "timeout"
	FlagEmulatorListen = "emulator-listen"
	FlagEmulatorToken  = "emulator-token"
	FlagIndexType      = "index-type"
	FlagDimension      = "dimension"
	FlagSimilarity     = "similarity"
	FlagEmbeddingProv  = "embedding-provider"
	FlagEmbeddingTgt   = "embedding-target"
	FlagEmbeddingModel = "embedding-model"
	FlagMCPListen      = "mcp-listen"
)

// Flags is the registry shared by the upvector commands.
var Flags = FlagSet{
	FlagURL:            {Name: "url", ViperKey: "index.url", Description: "Index REST URL"},
	FlagToken:          {Name: "token", ViperKey: "index.token", Description: "Index REST token"},
	FlagNamespace:      {Name: "namespace", Shorthand: "n", ViperKey: "index.namespace", Description: "Namespace to operate on (default namespace when empty)"},
	FlagRetries:        {Name: "retries", ViperKey: "transport.retries", Description: "Extra attempts after a transport failure"},
	FlagTimeout:        {Name: "timeout", ViperKey: "transport.timeout", Description: "Timeout for each HTTP exchange"},
	FlagEmulatorListen: {Name: "listen", Shorthand: "l", ViperKey: "emulator.listen", Description: "Address for the emulator to listen on"},
	FlagEmulatorToken:  {Name: "emulator-token", ViperKey: "emulator.token", Description: "Bearer token the emulator requires (none when empty)"},
	FlagIndexType:      {Name: "index-type", ViperKey: "emulator.index_type", Description: "Emulated index type (DENSE, SPARSE, HYBRID)"},
	FlagDimension:      {Name: "dimension", ViperKey: "emulator.dimension", Description: "Dense vector dimension of the emulated index"},
	FlagSimilarity:     {Name: "similarity", ViperKey: "emulator.similarity", Description: "Similarity function (COSINE, EUCLIDEAN, DOT_PRODUCT)"},
	FlagEmbeddingProv:  {Name: "embedding-provider", ViperKey: "emulator.embedding_provider", Description: "Embedding provider for data records (hashing, ollama)"},
	FlagEmbeddingTgt:   {Name: "embedding-target", ViperKey: "emulator.embedding_target", Description: "Embedding provider URL"},
	FlagEmbeddingModel: {Name: "embedding-model", ViperKey: "emulator.embedding_model", Description: "Embedding model name"},
	FlagMCPListen:      {Name: "listen", Shorthand: "l", ViperKey: "mcp.listen", Description: "Address for the MCP server to listen on"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddPersistentStringFlag is AddStringFlag for flags inherited by every
// subcommand of cmd.
func AddPersistentStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.PersistentFlags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.PersistentFlags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddPersistentIntFlag is AddIntFlag for flags inherited by every
// subcommand of cmd.
func AddPersistentIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.PersistentFlags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.PersistentFlags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
