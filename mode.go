package instructor

type Mode = string

const (
	// ModeJSONSchema sends the compiled schema as responseSchema.
	ModeJSONSchema Mode = "json_schema_mode"
	// ModeJSON asks for JSON and states the schema in the prompt only.
	ModeJSON    Mode = "json_mode"
	ModeYAML    Mode = "yaml_mode"
	ModeTOML    Mode = "toml_mode"
	ModeDefault Mode = ModeJSONSchema
)
