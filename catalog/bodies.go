package catalog

import "fmt"

// CentralBody is the coordinate origin of every exported table. It has no
// trajectory of its own and is never exported.
const CentralBody = "Sun"

// bodyIDs assigns the stable numeric identifier stored in every binary table.
// These are NOT Horizons COMMAND values; they are the contract shared with the
// simulation loader. Existing entries must never be renumbered -- new bodies
// get appended with fresh integers.
var bodyIDs = map[string]uint32{
	"Sun":      0,
	"Mercury":  1,
	"Venus":    2,
	"Earth":    3,
	"Mars":     4,
	"Jupiter":  5,
	"Saturn":   6,
	"Uranus":   7,
	"Neptune":  8,
	"Moon":     9,
	"Io":       10,
	"Europa":   11,
	"Ganymede": 12,
	"Callisto": 13,
	"Titan":    14,
}

// horizonsCommands maps body names to Horizons COMMAND codes. Planets use the
// planet-center codes (x99); satellites use their standard NAIF IDs.
var horizonsCommands = map[string]string{
	"Mercury":  "199",
	"Venus":    "299",
	"Earth":    "399",
	"Mars":     "499",
	"Jupiter":  "599",
	"Saturn":   "699",
	"Uranus":   "799",
	"Neptune":  "899",
	"Moon":     "301",
	"Io":       "501",
	"Europa":   "502",
	"Ganymede": "503",
	"Callisto": "504",
	"Titan":    "606",
}

// Planets and Moons are the default export sets, in stable ID order.
var (
	Planets = []string{"Mercury", "Venus", "Earth", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}
	Moons   = []string{"Moon", "Io", "Europa", "Ganymede", "Callisto", "Titan"}
)

// BodyID resolves the stable numeric identifier for a body name.
func BodyID(name string) (uint32, error) {
	id, ok := bodyIDs[name]
	if !ok {
		return 0, fmt.Errorf("no body id configured for %q", name)
	}
	return id, nil
}

// Command resolves the Horizons COMMAND code for a body name. The central
// body has no command; asking for it is a configuration error.
func Command(name string) (string, error) {
	if name == CentralBody {
		return "", fmt.Errorf("%s is not exported (it is always the origin)", CentralBody)
	}
	cmd, ok := horizonsCommands[name]
	if !ok {
		return "", fmt.Errorf("no Horizons COMMAND configured for %q", name)
	}
	return cmd, nil
}
