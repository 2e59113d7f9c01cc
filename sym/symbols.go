// Package sym defines canonical symbols for fundlink commands and log output.
// These symbols are stable across CLI output, logs and documentation.
package sym

// Command symbols.
const (
	AM = "≡" // am: configuration and settings
	IX = "⨳" // ix: ingest source tables
	AX = "⋈" // ax: relate datasets to funding entities
	SE = "⊨" // se: semantic description similarity
	DB = "⊔" // db: result database
)

// Relationship symbols, one per target entity kind.
const (
	Program = "◆"
	Project = "◇"
	Grant   = "▪"
)

// entry binds a command name to its glyph and description.
type entry struct {
	glyph       string
	command     string
	description string
}

var registry = []entry{
	{AM, "am", "Configuration"},
	{IX, "ix", "Ingest source tables"},
	{AX, "match", "Relate datasets to programs, projects and grants"},
	{SE, "", "Semantic description similarity"},
	{DB, "db", "Result database"},
}

var commandToGlyph map[string]string

func init() {
	commandToGlyph = make(map[string]string, len(registry))
	for _, e := range registry {
		if e.command != "" {
			commandToGlyph[e.command] = e.glyph
		}
	}
}

// ForCommand returns the glyph for a CLI command name, or "" when it has none.
func ForCommand(command string) string {
	return commandToGlyph[command]
}

// Describe returns the description registered for a glyph.
func Describe(glyph string) (string, bool) {
	for _, e := range registry {
		if e.glyph == glyph {
			return e.description, true
		}
	}
	return "", false
}
