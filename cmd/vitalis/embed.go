package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers overwrite embed_config.yaml with distribution defaults before
// compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
