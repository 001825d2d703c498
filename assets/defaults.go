package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultLexiconYAML contains the embedded intent, sentiment and cue lexicon.
//
//go:embed defaults/lexicon.yaml
var DefaultLexiconYAML []byte

// DefaultCatalogYAML contains the embedded command catalog.
//
//go:embed defaults/catalog.yaml
var DefaultCatalogYAML []byte
