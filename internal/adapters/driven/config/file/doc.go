// Package file keeps user state under ~/.sercha-agents.
//
// ConfigStore reads and writes config.toml, flattening nested tables to
// dotted keys. PromptStore loads the router and synthesis prompt
// templates from prompts/, writing the defaults there on first use so
// they can be edited.
package file
