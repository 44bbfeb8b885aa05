// Package config provides a small load/save abstraction for text-based
// configuration files.
//
// A File binds a path to a Serializer. Load opens (or creates) the file,
// hands its whole content to the Serializer, and marks the file loaded;
// Save asks the Serializer for text and replaces the file atomically.
//
// Document is a ready-made Serializer for any struct, encoded with one of
// the JSON, YAML or TOML codecs and validated with go-playground/validator
// struct tags after every decode.
//
//	doc := config.NewDocument(config.YAML, logging.DefaultConfig())
//	f := config.NewFile("app.yaml", doc)
//	if err := f.Load(ctx); err != nil { return err }
//	cfg := doc.Value()
package config
